package listener

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bgagnon/translien/internal"
	"github.com/bgagnon/translien/internal/cache"
	"github.com/bgagnon/translien/internal/metrics"
	"github.com/bgagnon/translien/internal/whitelist"
)

// The inbox command keyword, matched case-insensitively anywhere in the
// notification body.
const whitelistKeyword = "whitelist"

// InboxListener consumes the bot account's notifications and whitelists
// the referenced submission's domain on an authorized request.
type InboxListener struct {
	source     InboxStreamer
	processor  SubmissionProcessor
	whitelist  *whitelist.Whitelist
	seen       *cache.Seen
	seenPath   string
	subreddit  string
	authorized []string
	log        zerolog.Logger
}

func NewInboxListener(source InboxStreamer, proc SubmissionProcessor, wl *whitelist.Whitelist, seen *cache.Seen, seenPath, subreddit string, authorized []string, log zerolog.Logger) *InboxListener {
	return &InboxListener{
		source:     source,
		processor:  proc,
		whitelist:  wl,
		seen:       seen,
		seenPath:   seenPath,
		subreddit:  subreddit,
		authorized: authorized,
		log:        log.With().Str("task", "inbox").Logger(),
	}
}

func (l *InboxListener) Name() string {
	return "inbox"
}

// Run consumes inbox notifications until ctx is cancelled. Duplicate
// deliveries are tolerated: the seen cache drops them before any side
// effect, and whitelist-add and reply-post are idempotent anyway.
func (l *InboxListener) Run(ctx context.Context) error {
	items, errs := l.source.StreamInbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if ok && err != nil {
				l.log.Warn().Err(err).Msg("inbox stream error")
			}
		case item, ok := <-items:
			if !ok {
				return nil
			}
			if err := l.handle(ctx, item); err != nil {
				return err
			}
		}
	}
}

func (l *InboxListener) handle(ctx context.Context, item internal.InboxItem) error {
	if err := l.source.MarkRead(ctx, item); err != nil {
		l.log.Warn().Err(err).Str("item", item.ID).Msg("failed to mark item read")
	}

	if !item.IsCommentReply && !strings.EqualFold(item.Subject, "username mention") {
		return nil
	}
	if !strings.Contains(strings.ToLower(item.Body), whitelistKeyword) {
		return nil
	}

	if l.seen.Has(item.FullID) {
		metrics.SubmissionsSkipped.WithLabelValues(metrics.ReasonDuplicate).Inc()
		return nil
	}
	l.seen.Add(item.FullID)

	l.log.Info().Str("author", item.Author).Msg("whitelisting request received")
	if !l.isAuthorized(ctx, item.Author) {
		// The requester gets no reply; refusals are operator-visible only.
		l.log.Warn().Str("author", item.Author).Msg("user is not authorized to whitelist")
		return nil
	}

	sub, err := l.source.SubmissionFor(ctx, item)
	if err != nil {
		l.log.Warn().Err(err).Str("item", item.ID).Msg("failed to resolve submission")
		return nil
	}
	if sub.IsSelf || l.whitelist.Contains(sub.URL) {
		return nil
	}

	l.whitelist.Add(sub.URL)
	if err := l.whitelist.Save(); err != nil {
		l.log.Error().Err(err).Msg("failed to persist whitelist")
	}
	metrics.WhitelistSize.Set(float64(l.whitelist.Len()))
	l.log.Info().Str("url", sub.URL).Msg("whitelisted domain")

	return processErr(l.log, l.processor.Process(ctx, sub))
}

// isAuthorized checks the configured user list unioned with the
// subreddit's current moderators, fetched fresh so the list stays
// authoritative.
func (l *InboxListener) isAuthorized(ctx context.Context, author string) bool {
	for _, u := range l.authorized {
		if strings.EqualFold(u, author) {
			return true
		}
	}

	mods, err := l.source.Moderators(ctx, l.subreddit)
	if err != nil {
		l.log.Warn().Err(err).Msg("failed to list moderators")
		return false
	}
	for _, m := range mods {
		if strings.EqualFold(m, author) {
			return true
		}
	}
	return false
}

// SaveState persists the seen cache, oldest entry first.
func (l *InboxListener) SaveState() error {
	return l.seen.Save(l.seenPath)
}
