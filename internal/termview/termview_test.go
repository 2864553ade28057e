package termview

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/grocerylist/internal/listview"
	"github.com/dukerupert/grocerylist/internal/model"
)

func TestRenderSections(t *testing.T) {
	items := []model.Item{
		{ID: 1, Title: "Milk", Category: model.CategoryDairyAndEggs, Notes: "semi-skimmed", DateAdded: time.Unix(1, 0)},
		{ID: 2, Title: "Apples", Category: model.CategoryFruitAndVeg, Completed: true, DateAdded: time.Unix(2, 0)},
	}
	sections := listview.Derive(items, listview.Options{})

	var buf bytes.Buffer
	if err := New(true).Render(&buf, sections, listview.Summarize(items, sections)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	fruit := strings.Index(out, "Fruit & Veg")
	dairy := strings.Index(out, "Dairy & Eggs")
	if fruit < 0 || dairy < 0 || fruit > dairy {
		t.Errorf("headers missing or out of order:\n%s", out)
	}
	for _, want := range []string{"Milk", "Apples", "semi-skimmed", "[x]", "(1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := New(false).Render(&buf, nil, listview.Summarize(nil, nil)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Empty list") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderHiddenCount(t *testing.T) {
	items := []model.Item{
		{ID: 1, Title: "Milk", Category: model.CategoryDairyAndEggs, Completed: true},
		{ID: 2, Title: "Eggs", Category: model.CategoryDairyAndEggs},
	}
	sections := listview.Derive(items, listview.Options{HideCompleted: true})

	var buf bytes.Buffer
	New(false).Render(&buf, sections, listview.Summarize(items, sections))
	if !strings.Contains(buf.String(), "1 completed item(s) hidden") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFirstLines(t *testing.T) {
	if got := firstLines("a\nb\nc", 2); got != "a b …" {
		t.Errorf("firstLines = %q", got)
	}
	if got := firstLines("a", 2); got != "a" {
		t.Errorf("firstLines = %q", got)
	}
}
