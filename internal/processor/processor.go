// Package processor runs the per-submission decision pipeline: eligibility
// checks, page fetch, language detection and the idempotent translated-link
// reply.
package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgagnon/translien/internal"
	"github.com/bgagnon/translien/internal/detector"
	"github.com/bgagnon/translien/internal/extractor"
	"github.com/bgagnon/translien/internal/metrics"
	"github.com/bgagnon/translien/internal/translator"
	"github.com/bgagnon/translien/internal/whitelist"
)

// Submissions older than this are never replied to; resurfaced old content
// should not receive a bot comment.
const maxAge = 24 * time.Hour

// PageExtractor fetches a URL and returns its flat content blocks.
type PageExtractor interface {
	FetchAndExtract(ctx context.Context, pageURL string) ([]internal.Block, error)
}

// LanguageDetector returns the dominant language of the selected blocks.
type LanguageDetector interface {
	Detect(blocks []internal.Block, domain string) (string, error)
}

// ReplySink posts a Markdown reply to a submission. Implementations return
// internal.ErrStaleSubmission when the platform's comment window has
// closed.
type ReplySink interface {
	Reply(ctx context.Context, sub internal.Submission, markdown string) error
}

// Journal optionally records posted replies across restarts; a nil Journal
// disables it.
type Journal interface {
	HasReplied(ctx context.Context, submissionID string) (bool, error)
	RecordReply(ctx context.Context, submissionID, submissionURL, detected, target, message string) error
}

// Config carries the identity and language pair the pipeline decides with.
type Config struct {
	// Username is the bot's own account name, matched case-insensitively
	// against root-comment authors.
	Username string
	// LangA and LangB are the two working lowercase ISO 639-1 codes; a
	// page detected as one gets a link targeting the other.
	LangA string
	LangB string
}

// Processor is shared by both listener tasks; the per-run replied set is
// the only internal mutable state and is guarded accordingly.
type Processor struct {
	cfg       Config
	whitelist *whitelist.Whitelist
	extractor PageExtractor
	detector  LanguageDetector
	builder   *translator.Builder
	sink      ReplySink
	journal   Journal
	log       zerolog.Logger

	mu      sync.Mutex
	replied map[string]struct{}
}

func New(cfg Config, wl *whitelist.Whitelist, ext PageExtractor, det LanguageDetector, builder *translator.Builder, sink ReplySink, journal Journal, log zerolog.Logger) *Processor {
	return &Processor{
		cfg:       cfg,
		whitelist: wl,
		extractor: ext,
		detector:  det,
		builder:   builder,
		sink:      sink,
		journal:   journal,
		log:       log,
		replied:   make(map[string]struct{}),
	}
}

// Process runs one submission through the pipeline. A nil return means the
// pipeline reached a terminal state, replied or not; only fetch failures
// and unexpected reply failures surface as errors.
func (p *Processor) Process(ctx context.Context, sub internal.Submission) error {
	log := p.log.With().Str("submission", sub.ID).Str("title", sub.Title).Logger()
	log.Info().Msg("analyzing submission")
	metrics.SubmissionsInspected.Inc()

	if sub.IsSelf {
		log.Debug().Msg("self post, skipping")
		metrics.SubmissionsSkipped.WithLabelValues(metrics.ReasonSelfPost).Inc()
		return nil
	}

	if time.Since(sub.Created) > maxAge {
		log.Debug().Msg("older than a day, skipping")
		metrics.SubmissionsSkipped.WithLabelValues(metrics.ReasonStale).Inc()
		return nil
	}

	if !p.whitelist.Contains(sub.URL) {
		log.Debug().Str("url", sub.URL).Msg("domain not whitelisted, skipping")
		metrics.SubmissionsSkipped.WithLabelValues(metrics.ReasonNotWhitelisted).Inc()
		return nil
	}

	if p.alreadyReplied(ctx, sub) {
		log.Debug().Msg("already replied, skipping")
		metrics.SubmissionsSkipped.WithLabelValues(metrics.ReasonAlreadyReplied).Inc()
		return nil
	}

	blocks, err := p.extractor.FetchAndExtract(ctx, sub.URL)
	if err != nil {
		if errors.Is(err, extractor.ErrNotHTML) {
			log.Debug().Msg("not an html page, skipping")
			metrics.SubmissionsSkipped.WithLabelValues(metrics.ReasonNotHTML).Inc()
			return nil
		}
		metrics.FetchErrors.Inc()
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	domain := whitelist.Normalize(sub.URL)
	detected, err := p.detector.Detect(blocks, domain)
	if err != nil {
		if errors.Is(err, detector.ErrNoLanguage) {
			log.Debug().Msg("no language determined, skipping")
			metrics.SubmissionsSkipped.WithLabelValues(metrics.ReasonNoLanguage).Inc()
			return nil
		}
		return fmt.Errorf("failed to detect language: %w", err)
	}

	target, ok := p.targetFor(detected)
	if !ok {
		log.Debug().Str("lang", detected).Msg("outside the working language pair, skipping")
		metrics.SubmissionsSkipped.WithLabelValues(metrics.ReasonOtherLanguage).Inc()
		return nil
	}

	message, err := p.builder.Message(sub.URL, target)
	if err != nil {
		return fmt.Errorf("failed to build reply: %w", err)
	}

	log.Info().Str("lang", detected).Str("target", target).Msg("replying with translated link")
	if err := p.sink.Reply(ctx, sub, message); err != nil {
		if errors.Is(err, internal.ErrStaleSubmission) {
			// The platform enforces a comment window; hitting it is
			// expected and not a failure.
			log.Debug().Msg("comment window closed, treating as no-op")
			p.markReplied(sub)
			return nil
		}
		return fmt.Errorf("failed to reply: %w", err)
	}

	p.markReplied(sub)
	metrics.RepliesPosted.WithLabelValues(target).Inc()
	if p.journal != nil {
		if err := p.journal.RecordReply(ctx, sub.FullID, sub.URL, detected, target, message); err != nil {
			log.Warn().Err(err).Msg("failed to journal reply")
		}
	}
	return nil
}

// targetFor maps a detected language to the opposite member of the working
// pair.
func (p *Processor) targetFor(detected string) (string, bool) {
	switch detected {
	case p.cfg.LangA:
		return p.cfg.LangB, true
	case p.cfg.LangB:
		return p.cfg.LangA, true
	}
	return "", false
}

// alreadyReplied combines the per-run tracking set, the optional journal
// and the authoritative scan of the submission's root comments.
func (p *Processor) alreadyReplied(ctx context.Context, sub internal.Submission) bool {
	p.mu.Lock()
	_, seen := p.replied[sub.FullID]
	p.mu.Unlock()
	if seen {
		return true
	}

	if p.journal != nil {
		journaled, err := p.journal.HasReplied(ctx, sub.FullID)
		if err != nil {
			p.log.Warn().Err(err).Msg("journal lookup failed")
		} else if journaled {
			return true
		}
	}

	for _, c := range sub.Comments {
		if c.IsRoot && strings.EqualFold(c.Author, p.cfg.Username) {
			return true
		}
	}
	return false
}

func (p *Processor) markReplied(sub internal.Submission) {
	p.mu.Lock()
	p.replied[sub.FullID] = struct{}{}
	p.mu.Unlock()
}
