package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/grocerylist/internal/model"
)

// ItemStore is the authoritative set of shopping-list items. Subscribers are
// told about every mutation that touched at least one row.
type ItemStore struct {
	db  *sql.DB
	now func() time.Time

	mu          sync.RWMutex
	subscribers []func(model.Change)
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Subscribe registers fn to receive change notifications. Notifications are
// delivered synchronously after the write has committed.
func (s *ItemStore) Subscribe(fn func(model.Change)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *ItemStore) notify(c model.Change) {
	s.mu.RLock()
	subs := make([]func(model.Change), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(c)
	}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var completed int

	err := scanner.Scan(&item.ID, &item.Title, &item.Notes, &completed, &item.Category, &item.DateAdded)
	if err != nil {
		return nil, err
	}
	item.Completed = completed != 0
	return &item, nil
}

const itemCols = `id, title, notes, completed, category, date_added`

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) Insert(ctx context.Context, title, notes string, completed bool, category model.Category) (*model.Item, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (title, notes, completed, category, date_added) VALUES (?, ?, ?, ?, ?)`,
		title, notes, boolToInt(completed), category, s.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(model.Change{Kind: model.ChangeCreated, ItemID: id, Count: 1})
	return item, nil
}

// List returns every item in insertion order, which is the base order the
// list view sorts stably from.
func (s *ItemStore) List(ctx context.Context) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemCols+` FROM items ORDER BY date_added ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Update applies the non-nil fields of u to item id. A missing id is not an
// error: it returns (nil, nil) and changes nothing.
func (s *ItemStore) Update(ctx context.Context, id int64, u model.ItemUpdate) (*model.Item, error) {
	if u.Empty() {
		return s.GetByID(ctx, id)
	}

	var sets []string
	var args []any
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *u.Notes)
	}
	if u.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *u.Category)
	}
	if u.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*u.Completed))
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, `UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(model.Change{Kind: model.ChangeUpdated, ItemID: id, Count: 1})
	return item, nil
}

func (s *ItemStore) SetCompleted(ctx context.Context, id int64, completed bool) (*model.Item, error) {
	return s.Update(ctx, id, model.ItemUpdate{Completed: &completed})
}

// Delete removes item id. It reports false, with no error, if the item was
// already gone.
func (s *ItemStore) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	s.notify(model.Change{Kind: model.ChangeDeleted, ItemID: id, Count: 1})
	return true, nil
}

// DeleteCompleted removes every completed item and returns what it removed.
func (s *ItemStore) DeleteCompleted(ctx context.Context) ([]model.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT `+itemCols+` FROM items WHERE completed = 1 ORDER BY date_added ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list completed: %w", err)
	}
	var removed []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan item: %w", err)
		}
		removed = append(removed, *item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list completed: %w", err)
	}
	rows.Close()

	if len(removed) == 0 {
		return nil, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE completed = 1`); err != nil {
		return nil, fmt.Errorf("delete completed: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.notify(model.Change{Kind: model.ChangeCleared, Count: len(removed)})
	return removed, nil
}

func (s *ItemStore) CountCompleted(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE completed = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
