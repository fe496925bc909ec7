package models

import "time"

// Topic is a creative-writing prompt
type Topic struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageRef    string    `db:"image_ref" json:"image_ref"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
