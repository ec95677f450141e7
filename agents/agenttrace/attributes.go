/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys.
const (
	InputKey          = attribute.Key("evaltrace.input")
	OutputKey         = attribute.Key("evaltrace.output")
	ExpectedKey       = attribute.Key("evaltrace.expected")
	MetadataKey       = attribute.Key("evaltrace.metadata")
	MetricsKey        = attribute.Key("evaltrace.metrics")
	ScoresKey         = attribute.Key("evaltrace.scores")
	SpanAttributesKey = attribute.Key("evaltrace.span_attributes")
	ParentKey         = attribute.Key("evaltrace.parent")
	OriginKey         = attribute.Key("evaltrace.origin")
	TagsKey           = attribute.Key("evaltrace.tags")
	RootIDKey         = attribute.Key("evaltrace.root_span_id")
)

// Span types recorded in SpanAttributes.Type.
const (
	TypeEval     = "eval"
	TypeTask     = "task"
	TypeScore    = "score"
	TypeLLM      = "llm"
	TypeTool     = "tool"
	TypeFunction = "function"
)

// PurposeScorer marks spans produced while scoring. Scorers never see these
// through a trace context.
const PurposeScorer = "scorer"

// SpanAttributes describes what a span is.
type SpanAttributes struct {
	Name    string `json:"name,omitempty"`
	Type    string `json:"type,omitempty"`
	Purpose string `json:"purpose,omitempty"`
}

// Fields renders the attributes as a generic map, matching the shape scorers
// read back from the span cache.
func (a SpanAttributes) Fields() map[string]any {
	m := make(map[string]any, 3)
	if a.Name != "" {
		m["name"] = a.Name
	}
	if a.Type != "" {
		m["type"] = a.Type
	}
	if a.Purpose != "" {
		m["purpose"] = a.Purpose
	}
	return m
}

// Origin links a case back to the dataset record it came from.
type Origin struct {
	ObjectType string `json:"object_type"`
	ObjectID   string `json:"object_id"`
	ID         string `json:"id"`
	XactID     string `json:"_xact_id"`
}

// JSON returns a string attribute holding the JSON encoding of v. Values that
// cannot be encoded fall back to their fmt representation.
func JSON(key attribute.Key, v any) attribute.KeyValue {
	return key.String(Encode(v))
}

// Encode JSON-encodes v, falling back to %v for unencodable values.
func Encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
