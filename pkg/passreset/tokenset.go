package passreset

import (
	"context"
	"sync"
)

// UsedTokenSet tracks consumed recovery tokens. A token present in the set
// must never authorize a second password change.
type UsedTokenSet interface {
	// Reserve marks the token as consumed. It returns false when the token
	// was already reserved; at most one concurrent caller gets true.
	Reserve(ctx context.Context, token string) (bool, error)

	// Release undoes a reservation after a failed attempt so the token can
	// still be spent on a retry.
	Release(ctx context.Context, token string) error
}

// MemoryTokenSet is the process-local implementation. Growth is bounded by
// an opportunistic clear once the set crosses maxSize; cleared tokens regain
// spendability, which is acceptable because provider-side token expiry caps
// the replay window.
type MemoryTokenSet struct {
	mu      sync.Mutex
	tokens  map[string]struct{}
	maxSize int
}

// MemoryTokenSetOption configures a MemoryTokenSet.
type MemoryTokenSetOption func(*MemoryTokenSet)

// WithMaxSize overrides the clear threshold.
func WithMaxSize(n int) MemoryTokenSetOption {
	return func(s *MemoryTokenSet) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// NewMemoryTokenSet creates an in-memory token set with a default clear
// threshold of 1000 tokens.
func NewMemoryTokenSet(opts ...MemoryTokenSetOption) *MemoryTokenSet {
	s := &MemoryTokenSet{
		tokens:  make(map[string]struct{}),
		maxSize: 1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryTokenSet) Reserve(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, used := s.tokens[token]; used {
		return false, nil
	}

	if len(s.tokens) >= s.maxSize {
		s.tokens = make(map[string]struct{})
	}
	s.tokens[token] = struct{}{}
	return true, nil
}

func (s *MemoryTokenSet) Release(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, token)
	return nil
}

var _ UsedTokenSet = (*MemoryTokenSet)(nil)
