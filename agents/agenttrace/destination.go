/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"fmt"
	"strings"
)

// DestinationKind identifies the kind of object a span is logged to.
type DestinationKind string

const (
	ExperimentID   DestinationKind = "experiment_id"
	ProjectID      DestinationKind = "project_id"
	ProjectName    DestinationKind = "project_name"
	PlaygroundID   DestinationKind = "playground_id"
	DestinationLog DestinationKind = "project_logs"
)

// Destination names the logical backend object a span belongs to.
// It is rendered on spans as "<kind>:<id>".
type Destination struct {
	Kind DestinationKind
	ID   string
}

// String returns the "<kind>:<id>" form.
func (d Destination) String() string {
	return fmt.Sprintf("%s:%s", d.Kind, d.ID)
}

// IsZero reports whether d is unset.
func (d Destination) IsZero() bool {
	return d.Kind == "" && d.ID == ""
}

// ParseDestination parses the "<kind>:<id>" form. Only the first colon
// separates kind from id, so ids may themselves contain colons.
func ParseDestination(s string) (Destination, error) {
	kind, id, found := strings.Cut(s, ":")
	if !found || kind == "" || id == "" {
		return Destination{}, fmt.Errorf("invalid destination %q: want <kind>:<id>", s)
	}
	return Destination{Kind: DestinationKind(kind), ID: id}, nil
}
