package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/grocerylist/internal/database"
	"github.com/dukerupert/grocerylist/internal/model"
	"github.com/dukerupert/grocerylist/internal/shopping"
)

// manualScheduler is shared between handler goroutines and the test.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []func()
}

func (m *manualScheduler) AfterFunc(_ time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, f)
}

func (m *manualScheduler) fire() {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()
	for _, f := range tasks {
		f()
	}
}

func newTestServer(t *testing.T) (*Server, *manualScheduler) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sched := &manualScheduler{}
	return New(db, Config{Shopping: shopping.Config{Scheduler: sched}}, slog.New(slog.NewTextHandler(io.Discard, nil))), sched
}

func setupTestServer(t *testing.T) (*httptest.Server, *manualScheduler) {
	t.Helper()
	srv, sched := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, sched
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts, _ := setupTestServer(t)

	var body map[string]any
	if code := doJSON(t, "GET", ts.URL+"/health", nil, &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" || body["schema"] != float64(2) || body["completed"] != float64(0) {
		t.Errorf("body = %v", body)
	}

	var item model.Item
	doJSON(t, "POST", ts.URL+"/api/items", map[string]any{"title": "Milk"}, &item)
	doJSON(t, "POST", ts.URL+"/api/items/"+itoa(item.ID)+"/toggle", nil, nil)

	body = nil
	doJSON(t, "GET", ts.URL+"/health", nil, &body)
	if body["completed"] != float64(1) {
		t.Errorf("completed = %v, want 1", body["completed"])
	}
}

func TestCategories(t *testing.T) {
	ts, _ := setupTestServer(t)

	var cats []model.CategoryMeta
	doJSON(t, "GET", ts.URL+"/api/categories", nil, &cats)
	if len(cats) != 8 {
		t.Fatalf("expected 8 categories, got %d", len(cats))
	}
	if cats[0].ID != model.CategoryFruitAndVeg || cats[7].ID != model.CategoryOther {
		t.Errorf("unexpected order: %v", cats)
	}
	if cats[1].Label != "Dairy & Eggs" {
		t.Errorf("label = %q", cats[1].Label)
	}
}

func TestItemLifecycle(t *testing.T) {
	ts, _ := setupTestServer(t)

	var created model.Item
	code := doJSON(t, "POST", ts.URL+"/api/items", map[string]any{"title": "Milk", "notes": "2 pints"}, &created)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d", code)
	}
	if created.Category != model.CategoryDairyAndEggs {
		t.Errorf("category = %q", created.Category)
	}

	var errBody map[string]string
	if code := doJSON(t, "POST", ts.URL+"/api/items", map[string]any{"title": "  "}, &errBody); code != http.StatusBadRequest {
		t.Errorf("empty title status = %d, want 400", code)
	}
	if !strings.Contains(errBody["error"], "title is required") {
		t.Errorf("error = %q", errBody["error"])
	}

	var updated model.Item
	code = doJSON(t, "PUT", ts.URL+"/api/items/"+itoa(created.ID), map[string]any{"title": "Oat milk", "category": "Pantry"}, &updated)
	if code != http.StatusOK {
		t.Fatalf("update status = %d", code)
	}
	if updated.Title != "Oat milk" || updated.Category != model.CategoryPantry || updated.Notes != "2 pints" {
		t.Errorf("updated = %+v", updated)
	}

	var toggled model.Item
	doJSON(t, "POST", ts.URL+"/api/items/"+itoa(created.ID)+"/toggle", nil, &toggled)
	if !toggled.Completed {
		t.Error("expected completed after toggle")
	}

	var cleared struct {
		Deleted int          `json:"deleted"`
		Items   []model.Item `json:"items"`
	}
	doJSON(t, "POST", ts.URL+"/api/items/delete-completed", nil, &cleared)
	if cleared.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", cleared.Deleted)
	}
	doJSON(t, "POST", ts.URL+"/api/items/delete-completed", nil, &cleared)
	if cleared.Deleted != 0 || cleared.Items == nil {
		t.Errorf("second clear = %+v, want zero with empty list", cleared)
	}

	if code := doJSON(t, "DELETE", ts.URL+"/api/items/"+itoa(created.ID), nil, nil); code != http.StatusNotFound {
		t.Errorf("delete of cleared item status = %d, want 404", code)
	}
	if code := doJSON(t, "POST", ts.URL+"/api/items/abc/toggle", nil, nil); code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", code)
	}
}

func TestSectionsHideCompletedGrace(t *testing.T) {
	ts, sched := setupTestServer(t)

	var view map[string]any
	doJSON(t, "PUT", ts.URL+"/api/view", map[string]any{"hide_completed": true, "sort": "name"}, &view)
	if view["hide_completed"] != true || view["sort"] != "name" {
		t.Fatalf("view = %v", view)
	}

	var bread, rolls model.Item
	doJSON(t, "POST", ts.URL+"/api/items", map[string]any{"title": "Rolls"}, &rolls)
	doJSON(t, "POST", ts.URL+"/api/items", map[string]any{"title": "Bread"}, &bread)
	doJSON(t, "POST", ts.URL+"/api/items/"+itoa(bread.ID)+"/toggle", nil, nil)

	var listing shopping.Listing
	doJSON(t, "GET", ts.URL+"/api/sections", nil, &listing)
	if len(listing.Sections) != 1 || listing.Sections[0].Count() != 2 {
		t.Fatalf("during grace sections = %+v", listing.Sections)
	}
	if listing.Sections[0].Items[0].Title != "Bread" {
		t.Errorf("name sort: first = %q", listing.Sections[0].Items[0].Title)
	}

	sched.fire()

	doJSON(t, "GET", ts.URL+"/api/sections", nil, &listing)
	if listing.Sections[0].Count() != 1 || listing.Sections[0].Items[0].Title != "Rolls" {
		t.Errorf("after grace sections = %+v", listing.Sections)
	}
	if !listing.Summary.HasCompleted || listing.Summary.Total != 2 {
		t.Errorf("summary = %+v", listing.Summary)
	}
}

func TestEssentials(t *testing.T) {
	ts, _ := setupTestServer(t)

	var added []model.Item
	if code := doJSON(t, "POST", ts.URL+"/api/items/essentials", nil, &added); code != http.StatusCreated {
		t.Fatalf("status = %d", code)
	}
	if len(added) != len(shopping.Essentials) {
		t.Errorf("added %d, want %d", len(added), len(shopping.Essentials))
	}
}

func TestChangeFeed(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	read := func() map[string]any {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return msg
	}

	if hello := read(); hello["type"] != "feed_hello" {
		t.Fatalf("first message = %v", hello)
	}

	doJSON(t, "POST", ts.URL+"/api/items", map[string]any{"title": "Apples"}, nil)

	msg := read()
	if msg["type"] != "item_created" {
		t.Errorf("type = %v, want item_created", msg["type"])
	}
	if got := srv.Hub().ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}
	if seq, ok := msg["seq"].(float64); !ok || uint64(seq) != srv.Hub().Seq() {
		t.Errorf("seq = %v, hub at %d", msg["seq"], srv.Hub().Seq())
	}

	if err := conn.Write(ctx, ws.MessageText, []byte(`{"type":"resync"}`)); err != nil {
		t.Fatalf("write resync: %v", err)
	}
	if hello := read(); hello["type"] != "feed_hello" || hello["seq"] != msg["seq"] {
		t.Errorf("resync reply = %v", hello)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
