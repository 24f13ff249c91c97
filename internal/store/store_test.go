package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/journal.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_RecordAndHasReplied(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	ok, err := s.HasReplied(ctx, "t3_abc")
	if err != nil {
		t.Fatalf("HasReplied failed: %v", err)
	}
	if ok {
		t.Error("expected no journal entry before recording")
	}

	err = s.RecordReply(ctx, "t3_abc", "https://example.com/a", "en", "fr", "[Traduction](u)")
	if err != nil {
		t.Fatalf("RecordReply failed: %v", err)
	}

	ok, err = s.HasReplied(ctx, "t3_abc")
	if err != nil {
		t.Fatalf("HasReplied failed: %v", err)
	}
	if !ok {
		t.Error("expected journal entry after recording")
	}
}

func TestStore_RecordReply_DuplicateIgnored(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.RecordReply(ctx, "t3_dup", "https://example.com", "fr", "en", "m"); err != nil {
			t.Fatalf("RecordReply #%d failed: %v", i, err)
		}
	}

	replies, err := s.ListReplies(ctx)
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if len(replies) != 1 {
		t.Errorf("got %d journal rows, want 1", len(replies))
	}
}

func TestStore_ListReplies(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.RecordReply(ctx, "t3_one", "https://example.com/1", "en", "fr", "m1"); err != nil {
		t.Fatalf("RecordReply failed: %v", err)
	}
	if err := s.RecordReply(ctx, "t3_two", "https://example.com/2", "fr", "en", "m2"); err != nil {
		t.Fatalf("RecordReply failed: %v", err)
	}

	replies, err := s.ListReplies(ctx)
	if err != nil {
		t.Fatalf("ListReplies failed: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("got %d rows, want 2", len(replies))
	}
	for _, r := range replies {
		if r.ID == "" || r.PostedAt.IsZero() {
			t.Errorf("row %q missing id or timestamp", r.SubmissionID)
		}
	}
}
