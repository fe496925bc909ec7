package models

import "time"

// WritingEntry is a saved piece of creative writing. Entries are append-only.
type WritingEntry struct {
	ID           string    `db:"id" json:"id"`
	AuthorUserID string    `db:"author_user_id" json:"author_user_id"`
	Text         string    `db:"text" json:"text"`
	TopicTitle   string    `db:"topic_title" json:"topic_title"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
