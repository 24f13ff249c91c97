package listener

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bgagnon/translien/internal/cache"
)

// SubmissionListener consumes the community's new-submission stream and
// runs every unseen submission through the pipeline. Whitelist membership
// is the gate; nothing is whitelisted here.
type SubmissionListener struct {
	source    SubmissionStreamer
	processor SubmissionProcessor
	seen      *cache.Seen
	seenPath  string
	subreddit string
	log       zerolog.Logger
}

func NewSubmissionListener(source SubmissionStreamer, proc SubmissionProcessor, seen *cache.Seen, seenPath, subreddit string, log zerolog.Logger) *SubmissionListener {
	return &SubmissionListener{
		source:    source,
		processor: proc,
		seen:      seen,
		seenPath:  seenPath,
		subreddit: subreddit,
		log:       log.With().Str("task", "submissions").Logger(),
	}
}

func (l *SubmissionListener) Name() string {
	return "submissions"
}

// Run consumes the stream until ctx is cancelled. Cancellation is observed
// between items only; an in-flight submission finishes first.
func (l *SubmissionListener) Run(ctx context.Context) error {
	subs, errs := l.source.StreamSubmissions(ctx, l.subreddit)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if ok && err != nil {
				l.log.Warn().Err(err).Msg("submission stream error")
			}
		case sub, ok := <-subs:
			if !ok {
				return nil
			}
			if l.seen.Has(sub.FullID) {
				continue
			}
			l.seen.Add(sub.FullID)

			l.log.Info().Str("submission", sub.ID).Msg("new submission on subreddit")
			if err := processErr(l.log, l.processor.Process(ctx, sub)); err != nil {
				return err
			}
		}
	}
}

// SaveState persists the seen cache, oldest entry first.
func (l *SubmissionListener) SaveState() error {
	return l.seen.Save(l.seenPath)
}
