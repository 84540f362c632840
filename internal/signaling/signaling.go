// Package signaling carries one encoded offer to a signaling endpoint and
// brings back the encoded answer. Every flavor performs exactly one
// request/response per call and never retries.
package signaling

import (
	"context"
	"fmt"
)

// Transport exchanges an encoded local description for the remote side's
// encoded answer.
//
// A well-formed response with no answer yields ("", nil); deciding what an
// empty answer means is left to the caller.
type Transport interface {
	Exchange(ctx context.Context, encodedOffer string) (string, error)
}

// TransportError reports that no usable response came back: the endpoint was
// unreachable, the context expired, the status was not 2xx, or the body
// could not be understood.
type TransportError struct {
	Endpoint   string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("signaling %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("signaling %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RejectedError carries the error message of a well-formed response, as the
// endpoint wrote it.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }
