// Package topics provides the conversation prompt catalog.
//
// Every channel gets one prompt assigned at pairing time, picked uniformly
// at random with replacement. The built-in catalog can be replaced by a YAML
// file (see Load), and the file can be watched for live edits (see Watcher).
package topics

import (
	"fmt"
	"math/rand/v2"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// defaultCatalog is used when no topics file is configured.
var defaultCatalog = []string{
	"What's the best trip you've ever taken?",
	"If you could master any skill overnight, what would it be?",
	"What's a movie you can rewatch endlessly?",
	"What food could you eat every day and never get tired of?",
	"What's the strangest coincidence that ever happened to you?",
	"If you could live in any decade, which one and why?",
	"What's a hobby you picked up and then abandoned?",
	"What song always puts you in a good mood?",
	"What's something you believed as a kid that turned out to be wrong?",
	"If you won the lottery tomorrow, what's the first thing you'd do?",
	"What's the best piece of advice you've ever received?",
	"Would you rather explore deep space or the deep ocean?",
	"What's a book that changed how you think?",
	"What's your most unpopular opinion about food?",
	"If animals could talk, which would be the rudest?",
	"What's a small thing that instantly makes your day better?",
	"What invention do you wish existed already?",
	"What's the best meal you've ever had, and where?",
	"If you had to teach a class on one subject, what would it be?",
	"What's something you're looking forward to this year?",
}

// Selector picks a random prompt from the current catalog.
// Safe for concurrent use; the catalog can be swapped while picks are served.
type Selector struct {
	mu      sync.RWMutex
	catalog []string
}

// NewSelector creates a selector over the built-in catalog.
func NewSelector() *Selector {
	return &Selector{catalog: defaultCatalog}
}

// Pick returns a uniformly random prompt. Repeats across calls are expected.
func (s *Selector) Pick() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog[rand.IntN(len(s.catalog))]
}

// Catalog returns a copy of the current catalog.
func (s *Selector) Catalog() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// Size returns the number of prompts in the current catalog.
func (s *Selector) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}

// Replace swaps the catalog. Empty catalogs are rejected so Pick never
// operates on a zero-length slice.
func (s *Selector) Replace(catalog []string) error {
	if len(catalog) == 0 {
		return fmt.Errorf("topic catalog must not be empty")
	}
	cp := make([]string, len(catalog))
	copy(cp, catalog)
	s.mu.Lock()
	s.catalog = cp
	s.mu.Unlock()
	return nil
}

// catalogFile is the YAML shape of a topics file.
type catalogFile struct {
	Topics []string `yaml:"topics"`
}

// Load reads a YAML topics file and replaces the selector's catalog.
func (s *Selector) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read topics file %s: %w", path, err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("failed to parse topics file %s: %w", path, err)
	}
	if err := s.Replace(cf.Topics); err != nil {
		return fmt.Errorf("topics file %s: %w", path, err)
	}
	return nil
}
