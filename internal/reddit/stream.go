package reddit

import (
	"context"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/bgagnon/translien/internal"
)

// StreamSubmissions emits new submissions to subreddit until ctx is
// cancelled. Each submission is hydrated with its comments so the
// pipeline can check for a previous reply. Posts present before the
// stream starts are discarded.
func (c *Client) StreamSubmissions(ctx context.Context, subreddit string) (<-chan internal.Submission, <-chan error) {
	subs := make(chan internal.Submission)
	errs := make(chan error)

	posts, streamErrs, stop := c.api.Stream.Posts(subreddit,
		reddit.StreamInterval(c.pollInterval),
		reddit.StreamDiscardInitial,
	)

	go func() {
		defer close(subs)
		defer close(errs)
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-streamErrs:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
			case post, ok := <-posts:
				if !ok {
					return
				}
				sub, err := c.submission(ctx, post.ID)
				if err != nil {
					select {
					case errs <- err:
					case <-ctx.Done():
						return
					}
					continue
				}
				select {
				case subs <- sub:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return subs, errs
}

// StreamInbox polls the unread inbox at the configured interval and
// emits every unread item until ctx is cancelled. Items are not marked
// read here; the consumer does that once it has taken responsibility
// for an item.
func (c *Client) StreamInbox(ctx context.Context) (<-chan internal.InboxItem, <-chan error) {
	items := make(chan internal.InboxItem)
	errs := make(chan error)

	go func() {
		defer close(items)
		defer close(errs)

		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			batch, err := c.unread(ctx)
			if err != nil {
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
			}
			for _, item := range batch {
				select {
				case items <- item:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return items, errs
}

func (c *Client) unread(ctx context.Context) ([]internal.InboxItem, error) {
	comments, messages, _, err := c.api.Message.InboxUnread(ctx, nil)
	if err != nil {
		return nil, err
	}

	var items []internal.InboxItem
	for _, m := range comments {
		items = append(items, fromMessage(m, true))
	}
	for _, m := range messages {
		items = append(items, fromMessage(m, false))
	}
	return items, nil
}

func fromMessage(m *reddit.Message, isComment bool) internal.InboxItem {
	return internal.InboxItem{
		ID:             m.ID,
		FullID:         m.FullID,
		Author:         m.Author,
		Subject:        m.Subject,
		Body:           m.Text,
		IsCommentReply: isComment,
	}
}
