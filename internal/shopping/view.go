package shopping

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/grocerylist/internal/listview"
	"github.com/dukerupert/grocerylist/internal/model"
	"github.com/dukerupert/grocerylist/internal/store"
	ws "github.com/dukerupert/grocerylist/internal/websocket"
)

// Listing is everything the list screen needs for one render.
type Listing struct {
	View     store.ViewSettings `json:"view"`
	Sections []listview.Section `json:"sections"`
	Summary  listview.Summary   `json:"summary"`
	Pending  []int64            `json:"pending"`
	// GraceMS is how long a pending item stays visible after completion.
	GraceMS int64 `json:"grace_ms"`
}

func (s *Service) View(ctx context.Context) (store.ViewSettings, error) {
	v, err := s.settings.GetView(ctx)
	if err != nil {
		return store.ViewSettings{}, fmt.Errorf("get view: %w", err)
	}
	return v, nil
}

func (s *Service) SetSort(ctx context.Context, opt model.SortOption) (store.ViewSettings, error) {
	if err := s.settings.SetSort(ctx, opt); err != nil {
		return store.ViewSettings{}, fmt.Errorf("set sort: %w", err)
	}
	return s.viewChanged(ctx)
}

func (s *Service) SetHideCompleted(ctx context.Context, hide bool) (store.ViewSettings, error) {
	if err := s.settings.SetHideCompleted(ctx, hide); err != nil {
		return store.ViewSettings{}, fmt.Errorf("set hide completed: %w", err)
	}
	return s.viewChanged(ctx)
}

func (s *Service) viewChanged(ctx context.Context) (store.ViewSettings, error) {
	v, err := s.View(ctx)
	if err != nil {
		return v, err
	}
	if s.feed != nil {
		s.feed.Broadcast(ws.NewMessage("view", "updated", 0, map[string]any{
			"sort":           string(v.Sort),
			"hide_completed": v.HideCompleted,
		}))
	}
	return v, nil
}

// Sections reads the current items and derives the grouped list with the
// stored view settings and the live pending set.
func (s *Service) Sections(ctx context.Context) (Listing, error) {
	view, err := s.View(ctx)
	if err != nil {
		return Listing{}, err
	}
	items, err := s.Items(ctx)
	if err != nil {
		return Listing{}, err
	}

	pending := s.tracker.Pending()
	sections := listview.Derive(items, listview.Options{
		Sort:          view.Sort,
		HideCompleted: view.HideCompleted,
		Pending:       pending,
		Locale:        s.locale,
	})

	ids := make([]int64, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return Listing{
		View:     view,
		Sections: sections,
		Summary:  listview.Summarize(items, sections),
		Pending:  ids,
		GraceMS:  s.tracker.Delay().Milliseconds(),
	}, nil
}

// Essentials are the everyday items offered for quick add.
var Essentials = []string{"Milk", "Eggs", "Bread", "Bananas", "Butter", "Coffee"}

// AddEssentials adds each essential whose title is not already on the list.
func (s *Service) AddEssentials(ctx context.Context) ([]model.Item, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]struct{}, len(items))
	for _, it := range items {
		have[strings.ToLower(strings.TrimSpace(it.Title))] = struct{}{}
	}

	added := []model.Item{}
	for _, title := range Essentials {
		if _, ok := have[strings.ToLower(title)]; ok {
			continue
		}
		item, err := s.AddItem(ctx, NewItem{Title: title})
		if err != nil {
			return added, err
		}
		added = append(added, *item)
	}
	return added, nil
}
