/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package exporter

import "net/http"

// Transport adds the headers in State to every request it sends.
type Transport struct {
	// Base sends the request. http.DefaultTransport is used when nil.
	Base  http.RoundTripper
	State *State
}

var _ http.RoundTripper = (*Transport)(nil)

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.State == nil {
		return base.RoundTrip(req)
	}
	headers := t.State.Headers()
	if len(headers) == 0 {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return base.RoundTrip(req)
}
