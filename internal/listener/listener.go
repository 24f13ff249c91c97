// Package listener runs the bot's two long-lived event consumers and the
// supervisor that coordinates their shutdown and state persistence.
package listener

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/bgagnon/translien/internal"
	"github.com/bgagnon/translien/internal/extractor"
)

// Task is one independently running unit of concurrency. Run blocks until
// the context is cancelled or the task fails; SaveState persists whatever
// the task needs across restarts.
type Task interface {
	Name() string
	Run(ctx context.Context) error
	SaveState() error
}

// SubmissionProcessor runs one submission through the decision pipeline.
type SubmissionProcessor interface {
	Process(ctx context.Context, sub internal.Submission) error
}

// SubmissionStreamer delivers new submissions on a community as a blocking
// channel pair. Reconnection on stream failure is the source's concern;
// errors surfacing on the second channel are informational.
type SubmissionStreamer interface {
	StreamSubmissions(ctx context.Context, subreddit string) (<-chan internal.Submission, <-chan error)
}

// InboxStreamer delivers the bot account's inbox notifications and the
// lookups the inbox listener needs around them.
type InboxStreamer interface {
	StreamInbox(ctx context.Context) (<-chan internal.InboxItem, <-chan error)
	MarkRead(ctx context.Context, items ...internal.InboxItem) error
	Moderators(ctx context.Context, subreddit string) ([]string, error)
	SubmissionFor(ctx context.Context, item internal.InboxItem) (internal.Submission, error)
}

// processErr decides whether a pipeline failure stops the listener. Fetch
// failures abort only the one submission; anything else (reply or
// configuration problems) propagates so an operator notices.
func processErr(log zerolog.Logger, err error) error {
	if err == nil {
		return nil
	}
	var fetchErr *extractor.FetchError
	if errors.As(err, &fetchErr) {
		log.Warn().Err(err).Msg("page fetch failed, skipping submission")
		return nil
	}
	return err
}
