// Package shopping is the entry point the presentation layer talks to. It
// ties the item store, the persisted view settings and the completion grace
// tracker together and announces every change on the feed.
package shopping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	"github.com/dukerupert/grocerylist/internal/completion"
	"github.com/dukerupert/grocerylist/internal/grocery"
	"github.com/dukerupert/grocerylist/internal/model"
	"github.com/dukerupert/grocerylist/internal/store"
	ws "github.com/dukerupert/grocerylist/internal/websocket"
)

var (
	ErrNotFound    = errors.New("item not found")
	ErrInvalidItem = errors.New("invalid item")
)

// Broadcaster receives change notifications. *websocket.Hub satisfies it.
type Broadcaster interface {
	Broadcast(ws.Message)
}

type Config struct {
	// Grace is how long a just-completed item stays visible while completed
	// items are hidden.
	Grace time.Duration
	// Scheduler runs grace timers. Nil means the runtime timer.
	Scheduler completion.Scheduler
	// Locale picks the collation for name sorting.
	Locale language.Tag
}

type Service struct {
	items    *store.ItemStore
	settings *store.SettingsStore
	tracker  *completion.Tracker
	feed     Broadcaster
	locale   language.Tag
	validate *validator.Validate
	logger   *slog.Logger

	// toggleMu makes the read and write of a toggle one step.
	toggleMu sync.Mutex
}

func New(items *store.ItemStore, settings *store.SettingsStore, feed Broadcaster, cfg Config, logger *slog.Logger) *Service {
	s := &Service{
		items:    items,
		settings: settings,
		feed:     feed,
		locale:   cfg.Locale,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
	s.tracker = completion.NewTracker(cfg.Grace, cfg.Scheduler, s.onHide, logger.With("component", "completion"))
	items.Subscribe(s.onChange)
	return s
}

// Tracker exposes the grace tracker so callers can drive timer events
// directly.
func (s *Service) Tracker() *completion.Tracker {
	return s.tracker
}

func (s *Service) onChange(c model.Change) {
	if s.feed == nil {
		return
	}
	var extra map[string]any
	if c.Kind == model.ChangeCleared {
		extra = map[string]any{"count": c.Count}
	}
	s.feed.Broadcast(ws.NewMessage("item", string(c.Kind), c.ItemID, extra))
}

func (s *Service) onHide(id int64) {
	if s.feed == nil {
		return
	}
	s.feed.Broadcast(ws.NewMessage("item", "hidden", id, nil))
}

// NewItem is the input of the add flow. An empty Category asks for the
// title to be categorised automatically.
type NewItem struct {
	Title     string `json:"title" validate:"required,max=200"`
	Notes     string `json:"notes" validate:"max=2000"`
	Category  string `json:"category"`
	Completed bool   `json:"completed"`
}

// ItemEdit carries an in-place edit. Nil fields are kept.
type ItemEdit struct {
	Title    *string `json:"title" validate:"omitnil,min=1,max=200"`
	Notes    *string `json:"notes" validate:"omitnil,max=2000"`
	Category *string `json:"category"`
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required", "min":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidItem, strings.Join(msgs, "; "))
}

func (s *Service) AddItem(ctx context.Context, in NewItem) (*model.Item, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := s.check(in); err != nil {
		return nil, err
	}

	cat := grocery.Categorize(in.Title)
	if strings.TrimSpace(in.Category) != "" {
		cat = model.ParseCategory(in.Category)
	}

	item, err := s.items.Insert(ctx, in.Title, in.Notes, in.Completed, cat)
	if err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	s.logger.Debug("item added", "item_id", item.ID, "category", item.Category)
	return item, nil
}

func (s *Service) EditItem(ctx context.Context, id int64, in ItemEdit) (*model.Item, error) {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	u := model.ItemUpdate{Title: in.Title, Notes: in.Notes}
	if in.Category != nil {
		c, err := s.editCategory(ctx, id, in)
		if err != nil {
			return nil, err
		}
		u.Category = &c
	}

	item, err := s.items.Update(ctx, id, u)
	if err != nil {
		return nil, fmt.Errorf("edit item: %w", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// editCategory resolves the category of an edit. A blank category is
// guessed from the title, as when adding.
func (s *Service) editCategory(ctx context.Context, id int64, in ItemEdit) (model.Category, error) {
	if strings.TrimSpace(*in.Category) != "" {
		return model.ParseCategory(*in.Category), nil
	}
	if in.Title != nil {
		return grocery.Categorize(*in.Title), nil
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("edit item: %w", err)
	}
	if item == nil {
		return "", ErrNotFound
	}
	return grocery.Categorize(item.Title), nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	ok, err := s.items.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.tracker.Forget(id)
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ToggleCompleted flips the completion flag of item id.
func (s *Service) ToggleCompleted(ctx context.Context, id int64) (*model.Item, error) {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggle item: %w", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if item.Completed {
		return s.Uncomplete(ctx, id)
	}
	return s.Complete(ctx, id)
}

// Complete marks item id completed. With hide-completed on, the item enters
// its grace window before the filter applies.
func (s *Service) Complete(ctx context.Context, id int64) (*model.Item, error) {
	view, err := s.settings.GetView(ctx)
	if err != nil {
		return nil, fmt.Errorf("complete item: %w", err)
	}

	// Pending must be set before the write is announced, or a client that
	// re-derives on the notification would drop the item early.
	s.tracker.OnComplete(id, view.HideCompleted)

	item, err := s.items.SetCompleted(ctx, id, true)
	if err != nil {
		s.tracker.OnUncomplete(id)
		return nil, fmt.Errorf("complete item: %w", err)
	}
	if item == nil {
		s.tracker.OnUncomplete(id)
		return nil, ErrNotFound
	}
	return item, nil
}

// Uncomplete clears the completion flag. There is no grace delay.
func (s *Service) Uncomplete(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.items.SetCompleted(ctx, id, false)
	// The flag is cleared before leaving pending so the item never drops out
	// of a derivation in between.
	s.tracker.OnUncomplete(id)
	if err != nil {
		return nil, fmt.Errorf("uncomplete item: %w", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// DeleteCompleted removes every completed item and returns them. Calling it
// again without new completions removes nothing.
func (s *Service) DeleteCompleted(ctx context.Context) ([]model.Item, error) {
	removed, err := s.items.DeleteCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("delete completed: %w", err)
	}
	for _, it := range removed {
		s.tracker.Forget(it.ID)
	}
	if len(removed) > 0 {
		s.logger.Info("completed items deleted", "count", len(removed))
	}
	return removed, nil
}

// CompletedCount is the number of completed items, hidden or not.
func (s *Service) CompletedCount(ctx context.Context) (int, error) {
	n, err := s.items.CountCompleted(ctx)
	if err != nil {
		return 0, fmt.Errorf("count completed: %w", err)
	}
	return n, nil
}

func (s *Service) Items(ctx context.Context) ([]model.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
