// Package reddit adapts the go-reddit client to the streams and sinks the
// listener tasks consume. Authentication, pagination and rate limiting
// stay inside the library; this package only converts types and maps the
// platform's stale-submission failure to the sentinel the pipeline
// swallows.
package reddit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/bgagnon/translien/internal"
	"github.com/bgagnon/translien/internal/config"
)

const defaultPollInterval = 30 * time.Second

// Client wraps an authenticated go-reddit client.
type Client struct {
	api          *reddit.Client
	pollInterval time.Duration
	log          zerolog.Logger
}

func New(cfg config.RedditConfig, pollInterval time.Duration, log zerolog.Logger) (*Client, error) {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	credentials := reddit.Credentials{
		ID:       cfg.ClientID,
		Secret:   cfg.ClientSecret,
		Username: cfg.Username,
		Password: cfg.Password,
	}

	var opts []reddit.Opt
	if cfg.UserAgent != "" {
		opts = append(opts, reddit.WithUserAgent(cfg.UserAgent))
	}

	api, err := reddit.NewClient(credentials, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create reddit client: %w", err)
	}

	return &Client{
		api:          api,
		pollInterval: pollInterval,
		log:          log.With().Str("component", "reddit").Logger(),
	}, nil
}

// Reply posts a Markdown comment on the submission. A closed comment
// window surfaces as internal.ErrStaleSubmission.
func (c *Client) Reply(ctx context.Context, sub internal.Submission, markdown string) error {
	_, _, err := c.api.Comment.Submit(ctx, sub.FullID, markdown)
	if err != nil {
		if strings.Contains(strings.ToUpper(err.Error()), "TOO_OLD") {
			return internal.ErrStaleSubmission
		}
		return fmt.Errorf("failed to submit comment: %w", err)
	}
	return nil
}

// Moderators returns the current moderator names of subreddit, fetched
// fresh on every call.
func (c *Client) Moderators(ctx context.Context, subreddit string) ([]string, error) {
	mods, _, err := c.api.Subreddit.Moderators(ctx, subreddit)
	if err != nil {
		return nil, fmt.Errorf("failed to list moderators: %w", err)
	}

	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.User)
	}
	return names, nil
}

// MarkRead flags the given inbox items as read.
func (c *Client) MarkRead(ctx context.Context, items ...internal.InboxItem) error {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.FullID)
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := c.api.Message.Read(ctx, ids...); err != nil {
		return fmt.Errorf("failed to mark read: %w", err)
	}
	return nil
}

// SubmissionFor resolves the submission an inbox comment was left on,
// including its current comments.
func (c *Client) SubmissionFor(ctx context.Context, item internal.InboxItem) (internal.Submission, error) {
	if !item.IsCommentReply {
		return internal.Submission{}, fmt.Errorf("inbox item %s is not a comment", item.ID)
	}

	_, comments, _, _, err := c.api.Listings.Get(ctx, item.FullID)
	if err != nil {
		return internal.Submission{}, fmt.Errorf("failed to resolve comment %s: %w", item.ID, err)
	}
	if len(comments) == 0 {
		return internal.Submission{}, fmt.Errorf("comment %s not found", item.ID)
	}

	postID := strings.TrimPrefix(comments[0].PostID, "t3_")
	return c.submission(ctx, postID)
}

// submission fetches a post and flattens it with its comments.
func (c *Client) submission(ctx context.Context, id string) (internal.Submission, error) {
	pc, _, err := c.api.Post.Get(ctx, id)
	if err != nil {
		return internal.Submission{}, fmt.Errorf("failed to fetch post %s: %w", id, err)
	}

	sub := fromPost(pc.Post)
	for _, cm := range pc.Comments {
		sub.Comments = append(sub.Comments, internal.Comment{
			Author: cm.Author,
			IsRoot: cm.ParentID == pc.Post.FullID,
		})
	}
	return sub, nil
}

func fromPost(p *reddit.Post) internal.Submission {
	var created time.Time
	if p.Created != nil {
		created = p.Created.Time
	}
	return internal.Submission{
		ID:      p.ID,
		FullID:  p.FullID,
		Title:   p.Title,
		URL:     p.URL,
		Created: created,
		IsSelf:  p.IsSelfPost,
	}
}
