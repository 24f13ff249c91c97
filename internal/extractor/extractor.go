// Package extractor fetches a linked page and flattens its textual content
// into blocks for language detection.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/bgagnon/translien/internal"
)

const defaultUserAgent = "translien/1.0 (translated-link bot)"

// ErrNotHTML is returned when the response content type is not textual
// HTML. Processing stops quietly; there is nothing to detect.
var ErrNotHTML = errors.New("content is not html")

// FetchError is a transport or HTTP-status failure fetching a page. It
// aborts processing of the one submission that triggered it.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// blockTags are the element types flattened into content blocks.
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true,
	"li": true, "blockquote": true,
}

// Extractor fetches pages over HTTP and extracts flat content blocks.
type Extractor struct {
	client    *http.Client
	userAgent string
}

// New returns an extractor using userAgent for outgoing requests, or a
// default identifying string when empty.
func New(userAgent string) *Extractor {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Extractor{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
	}
}

// FetchAndExtract requests pageURL and returns its content blocks in
// document order. Non-HTML responses yield ErrNotHTML; transport failures
// and non-2xx statuses yield a *FetchError.
func (e *Extractor) FetchAndExtract(ctx context.Context, pageURL string) ([]internal.Block, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: pageURL, Status: resp.StatusCode}
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, ErrNotHTML
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	return extractBlocks(doc), nil
}

// extractBlocks walks the document and flattens every block-level element
// into a Block. Matched elements are not descended into, so nested block
// tags do not produce duplicate text.
func extractBlocks(doc *html.Node) []internal.Block {
	var blocks []internal.Block

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && blockTags[n.Data] {
			text := strings.Join(strings.Fields(nodeText(n)), " ")
			if text != "" {
				blocks = append(blocks, internal.Block{
					Tag:   n.Data,
					Class: attr(n, "class"),
					Text:  text,
				})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return blocks
}

// nodeText concatenates the text of all descendants, skipping script and
// style subtrees.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return ""
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
		b.WriteString(" ")
	}
	return b.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
