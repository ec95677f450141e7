/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package exporter

import (
	"maps"
	"sync"
)

// ParentHeader carries the destination of the spans in a request.
const ParentHeader = "x-evaltrace-parent"

// State holds the headers added to outgoing export requests.
type State struct {
	mu      sync.Mutex
	headers map[string]string
}

// NewState returns an empty State.
func NewState() *State {
	return &State{headers: make(map[string]string)}
}

// Set sets header to value.
func (s *State) Set(header, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headers == nil {
		s.headers = make(map[string]string)
	}
	s.headers[header] = value
}

// Delete removes header.
func (s *State) Delete(header string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.headers, header)
}

// Get returns the value of header and whether it is set.
func (s *State) Get(header string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.headers[header]
	return v, ok
}

// Headers returns a copy of every header currently set.
func (s *State) Headers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.headers)
}
