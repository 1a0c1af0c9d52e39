package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wethinkt/go-daybook/internal/journal"
)

type memDays struct {
	entries []journal.Entry
}

func (m *memDays) Days(ctx context.Context) ([]journal.DaySummary, error) {
	var out []journal.DaySummary
	idx := map[string]int{}
	for _, e := range m.entries {
		i, ok := idx[e.Day]
		if !ok {
			i = len(out)
			idx[e.Day] = i
			out = append(out, journal.DaySummary{Day: e.Day})
		}
		out[i].Count++
		out[i].LastAt = e.CreatedAt
	}
	return out, nil
}

func (m *memDays) Entries(ctx context.Context, day string) ([]journal.Entry, error) {
	var out []journal.Entry
	for _, e := range m.entries {
		if e.Day == day {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memDays) Append(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	e.Text = strings.TrimSpace(e.Text)
	if e.Text == "" {
		return journal.Entry{}, journal.ErrEmptyText
	}
	if e.Day == "" {
		e.Day = "2026-10-19"
	}
	e.ID = "id1"
	m.entries = append(m.entries, e)
	return e, nil
}

func withJSON(t *testing.T, on bool) {
	prev := outputJSON
	outputJSON = on
	t.Cleanup(func() { outputJSON = prev })
}

var cmdNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.Local)

func TestListDays(t *testing.T) {
	withJSON(t, false)
	m := &memDays{entries: []journal.Entry{
		{ID: "a", Day: "2026-10-19", Text: "x", CreatedAt: cmdNow.Add(-2 * time.Hour)},
		{ID: "b", Day: "2026-10-19", Text: "y", CreatedAt: cmdNow.Add(-time.Hour)},
		{ID: "c", Day: "2026-10-18", Text: "z", CreatedAt: cmdNow.Add(-20 * time.Hour)},
	}}

	var buf bytes.Buffer
	if err := listDays(context.Background(), &buf, m, cmdNow); err != nil {
		t.Fatalf("listDays: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two days, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "DAY") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "2026-10-19") || !strings.Contains(lines[1], "Today") {
		t.Errorf("first row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "Yesterday") || !strings.Contains(lines[2], "ago") {
		t.Errorf("second row = %q", lines[2])
	}
}

func TestListDays_Empty(t *testing.T) {
	withJSON(t, false)
	var buf bytes.Buffer
	if err := listDays(context.Background(), &buf, &memDays{}, cmdNow); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No entries yet") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestListDays_JSON(t *testing.T) {
	withJSON(t, true)
	var buf bytes.Buffer
	if err := listDays(context.Background(), &buf, &memDays{}, cmdNow); err != nil {
		t.Fatal(err)
	}
	var days []journal.DaySummary
	if err := json.Unmarshal(buf.Bytes(), &days); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if days == nil || len(days) != 0 {
		t.Errorf("expected an empty array, got %q", buf.String())
	}
}

func TestShowDay(t *testing.T) {
	withJSON(t, false)
	m := &memDays{entries: []journal.Entry{
		{ID: "a", Day: "2026-10-18", Role: journal.RoleAuthor, Text: "went hiking", CreatedAt: cmdNow},
		{ID: "b", Day: "2026-10-18", Role: journal.RoleReply, Text: "sounds lovely", CreatedAt: cmdNow},
	}}
	var buf bytes.Buffer
	if err := showDay(context.Background(), &buf, m, "2026-10-18"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"You", "went hiking", "Daybook", "sounds lovely"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if err := showDay(context.Background(), &buf, m, "18.10.2026"); !errors.Is(err, journal.ErrInvalidDay) {
		t.Errorf("err = %v, want ErrInvalidDay", err)
	}
}

func TestAppendEntry(t *testing.T) {
	withJSON(t, false)
	m := &memDays{}
	var buf bytes.Buffer
	if err := appendEntry(context.Background(), &buf, m, "", "  first  "); err != nil {
		t.Fatal(err)
	}
	if len(m.entries) != 1 || m.entries[0].Text != "first" || m.entries[0].Role != journal.RoleAuthor {
		t.Fatalf("unexpected entries %+v", m.entries)
	}
	if !strings.Contains(buf.String(), "id1") {
		t.Errorf("output = %q", buf.String())
	}

	if err := appendEntry(context.Background(), &buf, m, "bad", "x"); !errors.Is(err, journal.ErrInvalidDay) {
		t.Errorf("err = %v, want ErrInvalidDay", err)
	}
	if err := appendEntry(context.Background(), &buf, m, "", "   "); !errors.Is(err, journal.ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}
