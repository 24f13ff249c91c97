// Package metrics exposes the bot's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons recorded on SubmissionsSkipped.
const (
	ReasonSelfPost       = "self_post"
	ReasonStale          = "stale"
	ReasonNotWhitelisted = "not_whitelisted"
	ReasonAlreadyReplied = "already_replied"
	ReasonNotHTML        = "not_html"
	ReasonNoLanguage     = "no_language"
	ReasonOtherLanguage  = "other_language"
	ReasonDuplicate      = "duplicate"
)

var (
	SubmissionsInspected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "translien_submissions_inspected_total",
		Help: "Submissions run through the decision pipeline.",
	})

	SubmissionsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translien_submissions_skipped_total",
		Help: "Submissions that terminated without a reply, by reason.",
	}, []string{"reason"})

	RepliesPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translien_replies_posted_total",
		Help: "Translated-link replies posted, by target language.",
	}, []string{"target"})

	FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "translien_fetch_errors_total",
		Help: "Page fetches that failed at the transport or HTTP level.",
	})

	WhitelistSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "translien_whitelist_domains",
		Help: "Domains currently whitelisted.",
	})
)
