/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracecontext

import (
	"context"

	"chainguard.dev/evaltrace/agents/agenttrace"
)

// Message is one turn of a reconstructed conversation.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// GetThread reconstructs the conversation recorded under the root. Spans are
// scanned in order; input messages already seen are skipped, while output
// messages are always appended.
func (t *TraceContext) GetThread(ctx context.Context) ([]Message, error) {
	spans, err := t.GetSpans(ctx, "")
	if err != nil {
		return nil, err
	}

	var (
		thread []Message
		seen   = make(map[string]struct{})
	)
	for _, span := range spans {
		for _, msg := range messages(span["input"]) {
			key := messageKey(msg)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			thread = append(thread, msg)
		}
		for _, msg := range messages(span["output"]) {
			seen[messageKey(msg)] = struct{}{}
			thread = append(thread, msg)
		}
	}
	return thread, nil
}

func messageKey(m Message) string {
	return m.Role + "\x00" + agenttrace.Encode(m.Content)
}

// messages extracts chat messages from the common payload shapes: a single
// message, a list of messages, {"messages": [...]}, and completion responses
// carrying {"choices": [{"message": {...}}]}. Anything else yields nothing.
func messages(v any) []Message {
	switch val := v.(type) {
	case nil:
		return nil
	case Message:
		return []Message{val}
	case []Message:
		return val
	case map[string]any:
		if msg, ok := asMessage(val); ok {
			return []Message{msg}
		}
		if inner, ok := val["messages"]; ok {
			return messages(inner)
		}
		if choices, ok := val["choices"]; ok {
			return messages(choices)
		}
		if inner, ok := val["message"]; ok {
			return messages(inner)
		}
		return nil
	case []map[string]any:
		out := make([]Message, 0, len(val))
		for _, item := range val {
			out = append(out, messages(item)...)
		}
		return out
	case []any:
		out := make([]Message, 0, len(val))
		for _, item := range val {
			out = append(out, messages(item)...)
		}
		return out
	default:
		return nil
	}
}

func asMessage(m map[string]any) (Message, bool) {
	role, ok := m["role"].(string)
	if !ok || role == "" {
		return Message{}, false
	}
	return Message{Role: role, Content: m["content"]}, true
}
