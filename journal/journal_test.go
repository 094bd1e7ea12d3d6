package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "journal.db")
	j, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j, path
}

func TestRecordAndList(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	events := []Event{
		{RunID: "r1", Container: "dev1", Outcome: "created", DesiredHash: "aaa", At: at},
		{RunID: "r1", Container: "dev2", Outcome: "drift", DesiredHash: "bbb", CurrentHash: "ccc", At: at.Add(time.Second)},
		{RunID: "r2", Container: "dev1", Outcome: "up-to-date", DesiredHash: "aaa", CurrentHash: "aaa"},
	}
	for _, e := range events {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := j.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List() returned %d events, want 3", len(got))
	}
	if got[0].RunID != "r2" || got[2].Container != "dev1" || got[2].Outcome != "created" {
		t.Errorf("List() not newest first: %+v", got)
	}
	if !got[2].At.Equal(at) {
		t.Errorf("At = %v, want %v", got[2].At, at)
	}
	if got[0].At.IsZero() {
		t.Error("zero At should be stamped on Record")
	}
	if got[1].CurrentHash != "ccc" {
		t.Errorf("CurrentHash = %q, want ccc", got[1].CurrentHash)
	}
}

func TestListFilterAndLimit(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()
	for _, name := range []string{"dev1", "dev2", "dev1", "dev1"} {
		if err := j.Record(ctx, Event{RunID: "r", Container: name, Outcome: "up-to-date"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := j.List(ctx, "dev1", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("List(dev1) = %d events, want 3", len(got))
	}
	got, err = j.List(ctx, "", 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("List(limit 2) = %d events, want 2", len(got))
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	j, path := openTestJournal(t)
	ctx := context.Background()
	if err := j.Record(ctx, Event{RunID: "r", Container: "dev1", Outcome: "created"}); err != nil {
		t.Fatal(err)
	}
	j.Close()

	j2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer j2.Close()
	got, err := j2.List(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("List() after reopen = %d events, want 1", len(got))
	}
}
