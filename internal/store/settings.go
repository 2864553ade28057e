package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/dukerupert/grocerylist/internal/model"
)

const (
	keySortOption    = "sort_option"
	keyHideCompleted = "hide_completed"
)

// ViewSettings is the persisted part of the list's view state.
type ViewSettings struct {
	Sort          model.SortOption `json:"sort"`
	HideCompleted bool             `json:"hide_completed"`
}

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetView reads the view settings, defaulting anything missing or malformed.
func (s *SettingsStore) GetView(ctx context.Context) (ViewSettings, error) {
	sortRaw, err := s.Get(ctx, keySortOption)
	if err != nil {
		return ViewSettings{}, err
	}
	hideRaw, err := s.Get(ctx, keyHideCompleted)
	if err != nil {
		return ViewSettings{}, err
	}
	hide, _ := strconv.ParseBool(hideRaw)
	return ViewSettings{
		Sort:          model.ParseSortOption(sortRaw),
		HideCompleted: hide,
	}, nil
}

func (s *SettingsStore) SetSort(ctx context.Context, opt model.SortOption) error {
	return s.Set(ctx, keySortOption, string(model.ParseSortOption(string(opt))))
}

func (s *SettingsStore) SetHideCompleted(ctx context.Context, hide bool) error {
	return s.Set(ctx, keyHideCompleted, strconv.FormatBool(hide))
}
