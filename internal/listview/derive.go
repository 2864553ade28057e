// Package listview turns the flat item set into the grouped, filtered and
// sorted sections the list screen renders.
package listview

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dukerupert/grocerylist/internal/model"
)

// Options is the domain view state consumed by Derive.
type Options struct {
	Sort          model.SortOption
	HideCompleted bool
	// Pending holds ids of completed items that stay visible while their
	// hide grace window runs.
	Pending map[int64]struct{}
	// Locale selects the collation used for name ordering. Zero value is
	// language.Und.
	Locale language.Tag
}

type Section struct {
	Category model.Category `json:"category"`
	Label    string         `json:"label"`
	Color    string         `json:"color"`
	Items    []model.Item   `json:"items"`
}

func (s Section) Count() int {
	return len(s.Items)
}

// Derive groups items by category in declaration order, applies the
// hide-completed filter and sorts each group. Empty groups are omitted.
// Sorting is stable, so items that compare equal keep their input order.
func Derive(items []model.Item, opts Options) []Section {
	buckets := make([][]model.Item, len(model.Categories()))
	for _, it := range items {
		it.Category = model.ParseCategory(string(it.Category))
		if !visible(it, opts) {
			continue
		}
		idx := it.Category.Index()
		buckets[idx] = append(buckets[idx], it)
	}

	cmp := comparator(opts)
	sections := make([]Section, 0, len(buckets))
	for i, c := range model.Categories() {
		group := buckets[i]
		if len(group) == 0 {
			continue
		}
		slices.SortStableFunc(group, cmp)
		sections = append(sections, Section{
			Category: c,
			Label:    c.Label(),
			Color:    c.Color(),
			Items:    group,
		})
	}
	return sections
}

func visible(it model.Item, opts Options) bool {
	if !opts.HideCompleted || !it.Completed {
		return true
	}
	_, pending := opts.Pending[it.ID]
	return pending
}

func comparator(opts Options) func(a, b model.Item) int {
	if opts.Sort == model.SortByName {
		col := collate.New(opts.Locale, collate.IgnoreCase)
		return func(a, b model.Item) int {
			return col.CompareString(a.Title, b.Title)
		}
	}
	return func(a, b model.Item) int {
		return a.DateAdded.Compare(b.DateAdded)
	}
}

// Summary describes the whole list independent of filtering.
type Summary struct {
	Total        int  `json:"total"`
	Completed    int  `json:"completed"`
	Visible      int  `json:"visible"`
	HasCompleted bool `json:"has_completed"`
	Empty        bool `json:"empty"`
}

func Summarize(items []model.Item, sections []Section) Summary {
	s := Summary{Total: len(items), Empty: len(items) == 0}
	for _, it := range items {
		if it.Completed {
			s.Completed++
		}
	}
	for _, sec := range sections {
		s.Visible += sec.Count()
	}
	s.HasCompleted = s.Completed > 0
	return s
}
