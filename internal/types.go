package internal

import (
	"errors"
	"time"
)

// Submission is a user-posted link on the source platform. The core never
// mutates it except by posting a reply through the sink.
type Submission struct {
	ID       string    `json:"id"`
	FullID   string    `json:"full_id"`
	Title    string    `json:"title"`
	URL      string    `json:"url"`
	Created  time.Time `json:"created"`
	IsSelf   bool      `json:"is_self"`
	Comments []Comment `json:"comments,omitempty"`
}

// Comment is one comment attached to a submission. Only the fields the
// eligibility checks need are carried.
type Comment struct {
	Author string `json:"author"`
	IsRoot bool   `json:"is_root"`
}

// InboxItem is a notification (comment reply or username mention)
// delivered to the bot's account.
type InboxItem struct {
	ID             string `json:"id"`
	FullID         string `json:"full_id"`
	Author         string `json:"author"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	IsCommentReply bool   `json:"is_comment_reply"`
}

// Block is one flat content block extracted from a fetched page.
type Block struct {
	Tag   string `json:"tag"`
	Class string `json:"class"`
	Text  string `json:"text"`
}

// ErrStaleSubmission signals that the platform refused a reply because the
// submission is past its comment window. Callers treat it as a successful
// no-op.
var ErrStaleSubmission = errors.New("submission too old to reply to")
