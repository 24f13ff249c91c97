// Package whitelist holds the persisted set of domains approved for
// translation-link replies. One instance is shared by both listener tasks;
// every operation is serialized behind a single lock.
package whitelist

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
)

// Whitelist is a concurrency-safe set of normalized domains backed by a
// JSON file.
type Whitelist struct {
	mu      sync.Mutex
	path    string
	domains map[string]struct{}
}

// Normalize reduces a URL or bare domain to its lowercased registrable
// domain (eTLD+1): scheme, path, port and subdomains are stripped. It
// returns "" when the input cannot be reduced to a registrable domain;
// callers must treat "" as never whitelisted. Normalize is idempotent.
func Normalize(urlOrDomain string) string {
	s := strings.TrimSpace(urlOrDomain)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" {
		return ""
	}
	if net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return domain
}

// Load reads the whitelist from path. A missing file yields an empty
// whitelist. A file in the legacy newline-delimited format is migrated
// into the set; the migrated form is written out on the next Save.
func Load(path string) (*Whitelist, error) {
	w := &Whitelist{
		path:    path,
		domains: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return w, nil
		}
		return nil, fmt.Errorf("failed to read whitelist: %w", err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		// Legacy format: one domain per line.
		entries = strings.Split(string(data), "\n")
	}
	for _, e := range entries {
		if d := Normalize(e); d != "" {
			w.domains[d] = struct{}{}
		}
	}
	return w, nil
}

// Add normalizes urlOrDomain and inserts it. Unparseable input is a no-op.
func (w *Whitelist) Add(urlOrDomain string) {
	d := Normalize(urlOrDomain)
	if d == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.domains[d] = struct{}{}
}

// Remove deletes the normalized form of urlOrDomain from the set.
func (w *Whitelist) Remove(urlOrDomain string) {
	d := Normalize(urlOrDomain)
	if d == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.domains, d)
}

// Contains reports whether the normalized form of urlOrDomain is in the
// set. Unparseable input is never whitelisted.
func (w *Whitelist) Contains(urlOrDomain string) bool {
	d := Normalize(urlOrDomain)
	if d == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.domains[d]
	return ok
}

// Len returns the number of whitelisted domains.
func (w *Whitelist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.domains)
}

// Domains returns the whitelisted domains in sorted order.
func (w *Whitelist) Domains() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.domains))
	for d := range w.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Save serializes the full domain set to the backing file as a JSON array,
// replacing any prior contents.
func (w *Whitelist) Save() error {
	data, err := json.Marshal(w.Domains())
	if err != nil {
		return fmt.Errorf("failed to encode whitelist: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write whitelist: %w", err)
	}
	return nil
}
