// Package detail backs the per-column drill-down: which column is being
// inspected and the chart and metric data for it.
package detail

import (
	"errors"
	"sync"

	"github.com/dandantas/profilewatch/internal/model"
)

// ErrUnknownColumn is returned when selecting a name the result lacks
var ErrUnknownColumn = errors.New("column not found in current result")

// Selector holds at most one selected column name. It stores a name, not
// a copy, and is resolved against whichever result is current.
type Selector struct {
	mu   sync.RWMutex
	name string
}

// Select marks name as inspected. The name must exist in result.
func (s *Selector) Select(result *model.ProfileResult, name string) error {
	if result.FindColumn(name) == nil {
		return ErrUnknownColumn
	}
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	return nil
}

// Clear drops the selection
func (s *Selector) Clear() {
	s.mu.Lock()
	s.name = ""
	s.mu.Unlock()
}

// Invalidate is called whenever the result is replaced
func (s *Selector) Invalidate() {
	s.Clear()
}

// Name returns the selected column name, or "" when none
func (s *Selector) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Current resolves the selection against result
func (s *Selector) Current(result *model.ProfileResult) *model.Column {
	name := s.Name()
	if name == "" {
		return nil
	}
	return result.FindColumn(name)
}
