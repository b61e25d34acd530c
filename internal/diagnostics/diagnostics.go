// Package diagnostics collects non-fatal Warning values produced by
// worker goroutines during an export run, without the producer blocking
// on I/O and without interleaving concurrent writers, the way a shared
// mutex-guarded slice is used elsewhere in the pack for concurrent result
// aggregation (see internal/generator's renderOutcome collection).
package diagnostics

import "sync"

// Kind discriminates the situation a Warning describes.
type Kind int

const (
	KindUnresolvedLink Kind = iota
	KindFilteredEmbed
	KindDuplicateLookupKey
	KindMalformedComment
	KindRecursionLimitExceeded
	KindBrokenCycle
)

// Warning is one diagnostic record. EmbedChain is the display-name chain
// (root note first) active when the warning was recorded, empty when the
// warning originates at the root note itself. RunID is stamped by the
// driver after Drain, so warnings from overlapping or concurrent export
// runs can still be told apart once they reach a shared log stream.
type Warning struct {
	Kind       Kind
	Path       string
	EmbedChain []string
	Message    string
	RunID      string
}

// Sink collects Warning values from any number of concurrent producers.
type Sink struct {
	mu       sync.Mutex
	warnings []Warning
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{}
}

// Warn records w. Safe for concurrent callers.
func (s *Sink) Warn(w Warning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, w)
}

// Drain returns every warning recorded so far and resets the sink, for a
// driver that wants to flush to its logger in batches rather than
// continuously.
func (s *Sink) Drain() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.warnings
	s.warnings = nil
	return out
}
