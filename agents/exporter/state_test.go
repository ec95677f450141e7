/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package exporter

import "testing"

func TestState(t *testing.T) {
	var s State // zero value is usable

	if _, ok := s.Get(ParentHeader); ok {
		t.Error("Get on empty state: got = set, wanted = unset")
	}
	s.Set(ParentHeader, "experiment_id:1")
	if v, _ := s.Get(ParentHeader); v != "experiment_id:1" {
		t.Errorf("Get: got = %q, wanted = %q", v, "experiment_id:1")
	}

	h := s.Headers()
	h[ParentHeader] = "mutated"
	if v, _ := s.Get(ParentHeader); v != "experiment_id:1" {
		t.Errorf("Headers is not a copy: got = %q", v)
	}

	s.Delete(ParentHeader)
	if _, ok := s.Get(ParentHeader); ok {
		t.Error("Get after Delete: got = set, wanted = unset")
	}
}
