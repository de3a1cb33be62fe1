package pagination

import (
	"testing"
	"time"
)

type row struct {
	id string
	at time.Time
}

func rowKey(r row) (time.Time, string) { return r.at, r.id }

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit {
		t.Fatalf("expected default limit")
	}
	if NormalizeLimit(MaxLimit+1) != MaxLimit {
		t.Fatalf("expected max limit")
	}
	if NormalizeLimit(7) != 7 {
		t.Fatalf("expected limit passthrough")
	}
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	parsed, err := ParseCursor(EncodeCursor(Cursor{CreatedAt: at, ID: "ord|7"}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.CreatedAt.Equal(at) || parsed.ID != "ord|7" {
		t.Fatalf("unexpected cursor %+v", parsed)
	}

	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("blank cursor should be the first page")
	}
	if _, err := ParseCursor("not base64!"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPageWalksNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{"c", base.Add(2 * time.Hour)},
		{"b", base.Add(time.Hour)},
		{"a", base.Add(time.Hour)},
		{"z", base},
	}

	page, next := Page(rows, nil, 2, rowKey)
	if len(page) != 2 || page[1].id != "b" || next == "" {
		t.Fatalf("unexpected first page %+v next=%q", page, next)
	}
	cursor, err := ParseCursor(next)
	if err != nil {
		t.Fatalf("parse next: %v", err)
	}
	page, next = Page(rows, cursor, 2, rowKey)
	if len(page) != 2 || page[0].id != "a" || page[1].id != "z" || next != "" {
		t.Fatalf("unexpected second page %+v next=%q", page, next)
	}

	past := &Cursor{CreatedAt: base.Add(-time.Hour), ID: "x"}
	if page, _ := Page(rows, past, 2, rowKey); len(page) != 0 {
		t.Fatalf("expected empty page past the end, got %+v", page)
	}
}
