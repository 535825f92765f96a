package config

import (
	"fmt"
	"sync"

	"github.com/gobwas/glob"
)

const (
	// SectionIDReader is the identifier for the reader settings section
	SectionIDReader = "reader"

	// Default values for reader settings
	defaultMaxDepth            = 4
	defaultMaxTopLevelComments = 15
	defaultMaxTotalComments    = 60
	defaultStrategy            = "balanced"
	defaultHeadless            = false
)

// ReaderSection holds the thread-reading preferences that persist across
// sessions: expansion budget, strategy, author filters, and browser mode.
type ReaderSection struct {
	MaxDepth            int      `json:"max_depth"`
	MaxTopLevelComments int      `json:"max_top_level_comments"`
	MaxTotalComments    int      `json:"max_total_comments"`
	Strategy            string   `json:"strategy"`
	AuthorFilters       []string `json:"author_filters"`
	Headless            bool     `json:"headless"`
	mu                  sync.RWMutex
}

// NewReaderSection creates a reader section with default settings.
func NewReaderSection() *ReaderSection {
	return &ReaderSection{
		MaxDepth:            defaultMaxDepth,
		MaxTopLevelComments: defaultMaxTopLevelComments,
		MaxTotalComments:    defaultMaxTotalComments,
		Strategy:            defaultStrategy,
		Headless:            defaultHeadless,
	}
}

// ID returns the section identifier.
func (s *ReaderSection) ID() string {
	return SectionIDReader
}

// Title returns the section title.
func (s *ReaderSection) Title() string {
	return "Reader Settings"
}

// Description returns the section description.
func (s *ReaderSection) Description() string {
	return "Configure expansion budget, strategy, author filters, and browser mode."
}

// Data returns the current configuration data.
func (s *ReaderSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"max_depth":              s.MaxDepth,
		"max_top_level_comments": s.MaxTopLevelComments,
		"max_total_comments":     s.MaxTotalComments,
		"strategy":               s.Strategy,
		"author_filters":         append([]string(nil), s.AuthorFilters...),
		"headless":               s.Headless,
	}
}

// SetData updates the configuration from the provided data.
func (s *ReaderSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "max_depth":
			n, err := intValue(key, value)
			if err != nil {
				return err
			}
			s.MaxDepth = n

		case "max_top_level_comments":
			n, err := intValue(key, value)
			if err != nil {
				return err
			}
			s.MaxTopLevelComments = n

		case "max_total_comments":
			n, err := intValue(key, value)
			if err != nil {
				return err
			}
			s.MaxTotalComments = n

		case "strategy":
			str, ok := value.(string)
			if !ok {
				return fmt.Errorf("invalid value type for strategy: expected string, got %T", value)
			}
			s.Strategy = str

		case "author_filters":
			patterns, err := stringSliceValue(key, value)
			if err != nil {
				return err
			}
			s.AuthorFilters = patterns

		case "headless":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for headless: expected bool, got %T", value)
			}
			s.Headless = enabled
		}
	}

	return nil
}

// Validate checks the section's current values.
func (s *ReaderSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", s.MaxDepth)
	}
	if s.MaxTopLevelComments < 0 {
		return fmt.Errorf("max_top_level_comments must be non-negative, got %d", s.MaxTopLevelComments)
	}
	if s.MaxTotalComments < 0 {
		return fmt.Errorf("max_total_comments must be non-negative, got %d", s.MaxTotalComments)
	}
	switch s.Strategy {
	case "balanced", "breadth", "depth":
	default:
		return fmt.Errorf("unknown strategy %q", s.Strategy)
	}
	for _, pattern := range s.AuthorFilters {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid author filter pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// Reset restores the section's defaults.
func (s *ReaderSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.MaxDepth = defaultMaxDepth
	s.MaxTopLevelComments = defaultMaxTopLevelComments
	s.MaxTotalComments = defaultMaxTotalComments
	s.Strategy = defaultStrategy
	s.AuthorFilters = nil
	s.Headless = defaultHeadless
}

// intValue coerces a stored numeric value. JSON decoding delivers numbers as
// float64.
func intValue(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected number, got %T", key, value)
	}
}

// stringSliceValue coerces a stored string list. JSON decoding delivers
// arrays as []interface{}.
func stringSliceValue(key string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid element type in %s: expected string, got %T", key, item)
			}
			out = append(out, str)
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("invalid value type for %s: expected string list, got %T", key, value)
	}
}
