// Package translator builds ready-to-post redirect links to external web
// translation services. It never calls a translation API; the reply only
// points the reader at one.
package translator

import (
	"fmt"
	"strings"
)

// Service builds a translation redirect URL for one backend.
type Service interface {
	Name() string
	BuildURL(sourceURL, targetLang string) (string, error)
}

// Target is one constructed redirect URL for a given source URL and target
// language.
type Target struct {
	Service string `json:"service"`
	URL     string `json:"url"`
}

// Builder fans a request out to its configured services in fixed
// registration order.
type Builder struct {
	services []Service
}

func NewBuilder(services ...Service) *Builder {
	if len(services) == 0 {
		services = []Service{NewGoogleWebService(), NewLingvaService("")}
	}
	return &Builder{services: services}
}

// Build returns one target per configured service, in registration order.
// Every URL is additionally markdown-quoted: the output is embedded inside
// a Markdown link, where an unescaped parenthesis would terminate the link
// early.
func (b *Builder) Build(sourceURL, targetLang string) ([]Target, error) {
	var targets []Target
	for _, svc := range b.services {
		u, err := svc.BuildURL(sourceURL, targetLang)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", svc.Name(), err)
		}
		targets = append(targets, Target{Service: svc.Name(), URL: quoteMarkdown(u)})
	}
	return targets, nil
}

// Message renders the Markdown reply body listing every target. The label
// is written in the target language so readers see the link in the
// language they would click it for.
func (b *Builder) Message(sourceURL, targetLang string) (string, error) {
	targets, err := b.Build(sourceURL, targetLang)
	if err != nil {
		return "", err
	}

	label := "Translation"
	if targetLang == "fr" {
		label = "Traduction"
	}

	links := make([]string, 0, len(targets))
	for i, tgt := range targets {
		if i == 0 {
			links = append(links, fmt.Sprintf("[%s](%s)", label, tgt.URL))
			continue
		}
		links = append(links, fmt.Sprintf("[%s via %s](%s)", label, titleCase(tgt.Service), tgt.URL))
	}
	return strings.Join(links, " | "), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// quoteMarkdown backslash-escapes any parenthesis that survived URL
// encoding, matching the escaping the reply format requires.
func quoteMarkdown(u string) string {
	u = strings.ReplaceAll(u, "(", `\(`)
	return strings.ReplaceAll(u, ")", `\)`)
}
