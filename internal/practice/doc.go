// Package practice holds the per-visitor state behind the practice page:
// the auth gate, the spelling quiz and the writing journal. Controllers are
// safe for concurrent use and receive every collaborator through their
// constructor.
package practice
