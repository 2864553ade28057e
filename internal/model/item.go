package model

import (
	"strings"
	"time"
)

type Item struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	Completed bool      `json:"completed"`
	Category  Category  `json:"category"`
	DateAdded time.Time `json:"date_added"`
}

// HasNotes reports whether the notes contain anything besides whitespace.
func (i Item) HasNotes() bool {
	return strings.TrimSpace(i.Notes) != ""
}

// ItemUpdate carries the fields of an in-place edit. Nil fields are left
// unchanged.
type ItemUpdate struct {
	Title     *string
	Notes     *string
	Category  *Category
	Completed *bool
}

func (u ItemUpdate) Empty() bool {
	return u.Title == nil && u.Notes == nil && u.Category == nil && u.Completed == nil
}
