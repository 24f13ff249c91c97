// Package cache provides a bounded, insertion-ordered membership cache
// with FIFO eviction, used by each listener to skip recently seen items.
package cache

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const DefaultSize = 100

// Seen is a bounded set of item identifiers. Add always appends and evicts
// the oldest entry once the capacity is exceeded. It is not safe for
// concurrent use; each listener owns its own instance.
type Seen struct {
	size  int
	queue []string
	set   map[string]int
}

// New returns an empty cache bounded to size entries. A size of zero or
// less falls back to DefaultSize.
func New(size int) *Seen {
	if size <= 0 {
		size = DefaultSize
	}
	return &Seen{
		size: size,
		set:  make(map[string]int),
	}
}

// Load hydrates a cache from a newline-delimited file, oldest entry first.
// A missing file yields an empty cache, not an error.
func Load(path string, size int) (*Seen, error) {
	s := New(size)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			s.Add(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return s, nil
}

// Len returns the number of entries currently held.
func (s *Seen) Len() int {
	return len(s.queue)
}

// Has reports whether item is currently in the cache.
func (s *Seen) Has(item string) bool {
	return s.set[item] > 0
}

// Add appends item and evicts the oldest entry if the cache has grown past
// its capacity. Repeated identifiers are appended again; membership is
// counted so eviction of an older duplicate does not drop the newer one.
func (s *Seen) Add(item string) {
	s.queue = append(s.queue, item)
	s.set[item]++
	if len(s.queue) > s.size {
		oldest := s.queue[0]
		s.queue = s.queue[1:]
		s.set[oldest]--
		if s.set[oldest] <= 0 {
			delete(s.set, oldest)
		}
	}
}

// Items returns the current contents, oldest first.
func (s *Seen) Items() []string {
	out := make([]string, len(s.queue))
	copy(out, s.queue)
	return out
}

// Save writes the current contents to path, oldest first, one identifier
// per line, replacing any previous file.
func (s *Seen) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, item := range s.queue {
		fmt.Fprintln(w, item)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}
