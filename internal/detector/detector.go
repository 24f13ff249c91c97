// Package detector identifies the dominant language of extracted page
// content, applying a per-domain block-selection policy before running the
// statistical detector.
package detector

import (
	"errors"
	"strings"
	"unicode/utf8"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/bgagnon/translien/internal"
)

// Tokens longer than this are discarded before detection; they are almost
// always URLs or markup noise embedded in running text.
const maxTokenLen = 25

// ErrNoLanguage is returned when the aggregated text is too sparse or
// ambiguous for a confident result.
var ErrNoLanguage = errors.New("no language detected")

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

// Detect selects the content blocks for domain, filters their tokens and
// returns the detected language as a lowercase ISO 639-1 code. It fails
// with ErrNoLanguage when no confident detection is possible.
func (d *Detector) Detect(blocks []internal.Block, domain string) (string, error) {
	text := aggregate(policyFor(domain).Select(blocks))
	if text == "" {
		return "", ErrNoLanguage
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok || lang == lingua.Unknown {
		return "", ErrNoLanguage
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}

// aggregate splits block text on whitespace, drops overlong tokens and
// joins the survivors with single spaces.
func aggregate(blocks []internal.Block) string {
	var words []string
	for _, b := range blocks {
		for _, word := range strings.Fields(b.Text) {
			if utf8.RuneCountInString(word) <= maxTokenLen {
				words = append(words, word)
			}
		}
	}
	return strings.Join(words, " ")
}
