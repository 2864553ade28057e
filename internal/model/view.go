package model

import "strings"

type SortOption string

const (
	SortByName      SortOption = "name"
	SortByDateAdded SortOption = "date-added"
)

const DefaultSort = SortByDateAdded

// ParseSortOption falls back to DefaultSort for unknown values.
func ParseSortOption(raw string) SortOption {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "name", "title":
		return SortByName
	case "date-added", "date_added", "dateadded", "date":
		return SortByDateAdded
	}
	return DefaultSort
}

func (s SortOption) Label() string {
	if s == SortByName {
		return "Name"
	}
	return "Date Added"
}

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeCleared ChangeKind = "cleared"
)

// Change is emitted by the item store after a mutation. ItemID is zero for
// bulk changes.
type Change struct {
	Kind   ChangeKind
	ItemID int64
	Count  int
}
