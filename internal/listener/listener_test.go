package listener

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgagnon/translien/internal"
	"github.com/bgagnon/translien/internal/cache"
	"github.com/bgagnon/translien/internal/extractor"
	"github.com/bgagnon/translien/internal/whitelist"
)

type fakeSource struct {
	subs  chan internal.Submission
	items chan internal.InboxItem
	errs  chan error

	mu         sync.Mutex
	marked     []string
	mods       []string
	modsErr    error
	submission internal.Submission
	subErr     error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		subs:  make(chan internal.Submission),
		items: make(chan internal.InboxItem),
		errs:  make(chan error, 1),
	}
}

func (f *fakeSource) StreamSubmissions(ctx context.Context, subreddit string) (<-chan internal.Submission, <-chan error) {
	return f.subs, f.errs
}

func (f *fakeSource) StreamInbox(ctx context.Context) (<-chan internal.InboxItem, <-chan error) {
	return f.items, f.errs
}

func (f *fakeSource) MarkRead(ctx context.Context, items ...internal.InboxItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		f.marked = append(f.marked, it.FullID)
	}
	return nil
}

func (f *fakeSource) Moderators(ctx context.Context, subreddit string) ([]string, error) {
	return f.mods, f.modsErr
}

func (f *fakeSource) SubmissionFor(ctx context.Context, item internal.InboxItem) (internal.Submission, error) {
	return f.submission, f.subErr
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
	errs      map[string]error
}

func (f *fakeProcessor) Process(ctx context.Context, sub internal.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, sub.FullID)
	return f.errs[sub.FullID]
}

func (f *fakeProcessor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.processed)
}

func testWhitelist(t *testing.T) *whitelist.Whitelist {
	t.Helper()
	wl, err := whitelist.Load(filepath.Join(t.TempDir(), "wl.json"))
	if err != nil {
		t.Fatal(err)
	}
	return wl
}

func runTask(t *testing.T, task Task) (cancel func(), done chan error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() { done <- task.Run(ctx) }()
	return stop, done
}

func waitDone(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("task did not stop")
		return nil
	}
}

func TestSubmissionListener_ProcessesUnseen(t *testing.T) {
	src := newFakeSource()
	proc := &fakeProcessor{}
	l := NewSubmissionListener(src, proc, cache.New(10),
		filepath.Join(t.TempDir(), "seen"), "habs", zerolog.Nop())

	cancel, done := runTask(t, l)

	src.subs <- internal.Submission{ID: "a", FullID: "t3_a"}
	src.subs <- internal.Submission{ID: "a", FullID: "t3_a"} // duplicate
	src.subs <- internal.Submission{ID: "b", FullID: "t3_b"}

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if proc.count() != 2 {
		t.Errorf("processed %d submissions, want 2 (duplicate dropped)", proc.count())
	}
}

func TestSubmissionListener_FetchErrorDoesNotStop(t *testing.T) {
	src := newFakeSource()
	proc := &fakeProcessor{errs: map[string]error{
		"t3_a": &extractor.FetchError{URL: "https://x.test", Status: 500},
	}}
	l := NewSubmissionListener(src, proc, cache.New(10),
		filepath.Join(t.TempDir(), "seen"), "habs", zerolog.Nop())

	cancel, done := runTask(t, l)

	src.subs <- internal.Submission{FullID: "t3_a"}
	src.subs <- internal.Submission{FullID: "t3_b"}

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("fetch error must not stop the listener: %v", err)
	}
	if proc.count() != 2 {
		t.Errorf("processed %d submissions, want 2", proc.count())
	}
}

func TestSubmissionListener_ReplyErrorStops(t *testing.T) {
	src := newFakeSource()
	proc := &fakeProcessor{errs: map[string]error{
		"t3_a": errors.New("failed to reply: RATELIMIT"),
	}}
	l := NewSubmissionListener(src, proc, cache.New(10),
		filepath.Join(t.TempDir(), "seen"), "habs", zerolog.Nop())

	_, done := runTask(t, l)
	src.subs <- internal.Submission{FullID: "t3_a"}

	if err := waitDone(t, done); err == nil {
		t.Error("expected the listener to stop on a reply error")
	}
}

func TestSubmissionListener_SaveState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen")
	seen := cache.New(10)
	seen.Add("t3_a")
	l := NewSubmissionListener(newFakeSource(), &fakeProcessor{}, seen, path, "habs", zerolog.Nop())

	if err := l.SaveState(); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "t3_a\n" {
		t.Errorf("persisted cache = %q", data)
	}
}

func inboxItem(author, body string) internal.InboxItem {
	return internal.InboxItem{
		ID:             "m1",
		FullID:         "t1_m1",
		Author:         author,
		Body:           body,
		IsCommentReply: true,
	}
}

func newInboxListener(t *testing.T, src *fakeSource, proc *fakeProcessor, wl *whitelist.Whitelist) *InboxListener {
	t.Helper()
	return NewInboxListener(src, proc, wl, cache.New(10),
		filepath.Join(t.TempDir(), "seen"), "habs", []string{"trusted_user"}, zerolog.Nop())
}

func TestInboxListener_AuthorizedRequestWhitelistsAndProcesses(t *testing.T) {
	src := newFakeSource()
	src.submission = internal.Submission{ID: "s", FullID: "t3_s", URL: "https://www.example.com/story", Created: time.Now()}
	proc := &fakeProcessor{}
	wl := testWhitelist(t)
	l := newInboxListener(t, src, proc, wl)

	cancel, done := runTask(t, l)
	src.items <- inboxItem("trusted_user", "please WHITELIST this site")
	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !wl.Contains("example.com") {
		t.Error("expected the submission domain to be whitelisted")
	}
	if proc.count() != 1 {
		t.Errorf("processed %d submissions, want 1", proc.count())
	}
	if len(src.marked) != 1 {
		t.Errorf("marked %d items read, want 1", len(src.marked))
	}
}

func TestInboxListener_ModeratorIsAuthorized(t *testing.T) {
	src := newFakeSource()
	src.mods = []string{"Mod_One"}
	src.submission = internal.Submission{FullID: "t3_s", URL: "https://example.org/a", Created: time.Now()}
	proc := &fakeProcessor{}
	wl := testWhitelist(t)
	l := newInboxListener(t, src, proc, wl)

	cancel, done := runTask(t, l)
	src.items <- inboxItem("mod_one", "whitelist")
	cancel()
	waitDone(t, done)

	if !wl.Contains("example.org") {
		t.Error("expected moderator request to whitelist the domain")
	}
}

func TestInboxListener_UnauthorizedDropped(t *testing.T) {
	src := newFakeSource()
	src.submission = internal.Submission{FullID: "t3_s", URL: "https://example.com/a"}
	proc := &fakeProcessor{}
	wl := testWhitelist(t)
	l := newInboxListener(t, src, proc, wl)

	cancel, done := runTask(t, l)
	src.items <- inboxItem("random_user", "whitelist this")
	cancel()
	waitDone(t, done)

	if wl.Len() != 0 {
		t.Error("unauthorized request must not whitelist anything")
	}
	if proc.count() != 0 {
		t.Error("unauthorized request must not be processed")
	}
}

func TestInboxListener_IgnoresIrrelevantItems(t *testing.T) {
	src := newFakeSource()
	proc := &fakeProcessor{}
	wl := testWhitelist(t)
	l := newInboxListener(t, src, proc, wl)

	cancel, done := runTask(t, l)
	src.items <- internal.InboxItem{FullID: "t4_x", Subject: "post reply", Body: "whitelist"}
	src.items <- inboxItem("trusted_user", "nice link!")
	cancel()
	waitDone(t, done)

	if wl.Len() != 0 || proc.count() != 0 {
		t.Error("irrelevant items must be ignored")
	}
	if len(src.marked) != 2 {
		t.Errorf("marked %d items read, want 2 (every item is marked)", len(src.marked))
	}
}

func TestInboxListener_DuplicateItemDroppedBeforeAuthorization(t *testing.T) {
	src := newFakeSource()
	src.submission = internal.Submission{FullID: "t3_s", URL: "https://example.com/a", Created: time.Now()}
	proc := &fakeProcessor{}
	wl := testWhitelist(t)
	l := newInboxListener(t, src, proc, wl)

	cancel, done := runTask(t, l)
	src.items <- inboxItem("trusted_user", "whitelist")
	src.items <- inboxItem("trusted_user", "whitelist") // same FullID
	cancel()
	waitDone(t, done)

	if proc.count() != 1 {
		t.Errorf("processed %d submissions, want 1", proc.count())
	}
}

func TestInboxListener_SelfPostNotWhitelisted(t *testing.T) {
	src := newFakeSource()
	src.submission = internal.Submission{FullID: "t3_s", IsSelf: true}
	proc := &fakeProcessor{}
	wl := testWhitelist(t)
	l := newInboxListener(t, src, proc, wl)

	cancel, done := runTask(t, l)
	src.items <- inboxItem("trusted_user", "whitelist")
	cancel()
	waitDone(t, done)

	if wl.Len() != 0 || proc.count() != 0 {
		t.Error("self posts must not be whitelisted or processed")
	}
}

type recordingTask struct {
	name   string
	mu     sync.Mutex
	saved  int
	runErr error
}

func (r *recordingTask) Name() string { return r.name }

func (r *recordingTask) Run(ctx context.Context) error {
	if r.runErr != nil {
		return r.runErr
	}
	<-ctx.Done()
	return nil
}

func (r *recordingTask) SaveState() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved++
	return nil
}

func TestSupervisor_SavesStateOnceOnShutdown(t *testing.T) {
	wl := testWhitelist(t)
	wl.Add("example.com")
	t1 := &recordingTask{name: "one"}
	t2 := &recordingTask{name: "two"}
	sup := NewSupervisor(wl, zerolog.Nop(), t1, t2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	cancel()
	if err := waitDone(t, done); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if t1.saved != 1 || t2.saved != 1 {
		t.Errorf("SaveState calls = %d, %d; want 1 each", t1.saved, t2.saved)
	}
}

func TestSupervisor_TaskFailureCancelsSiblings(t *testing.T) {
	wl := testWhitelist(t)
	boom := errors.New("boom")
	failing := &recordingTask{name: "failing", runErr: boom}
	healthy := &recordingTask{name: "healthy"}
	sup := NewSupervisor(wl, zerolog.Nop(), failing, healthy)

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background()) }()

	if err := waitDone(t, done); !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want boom", err)
	}
	if healthy.saved != 1 {
		t.Error("state must be saved even when a sibling fails")
	}
}
