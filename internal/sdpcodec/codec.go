// Package sdpcodec converts session descriptions to and from the text form
// carried by the signaling endpoints: base64 of the JSON description.
package sdpcodec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v4"
)

// DecodeError reports a description that could not be recovered from its
// transport form. Stage names the layer that failed: "base64", "json",
// "type" or "sdp".
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed session description (%s): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var errUnknownType = errors.New("unknown description type")

// wireDescription is the JSON shape browsers produce for
// RTCSessionDescription.
type wireDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// base64 alphabets accepted on input, in order of preference. Output is
// always standard padded base64.
var encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// Encode serializes desc into its transport form.
func Encode(desc webrtc.SessionDescription) (string, error) {
	if desc.Type == webrtc.SDPTypeUnknown {
		return "", fmt.Errorf("encode session description: %w", errUnknownType)
	}
	raw, err := json.Marshal(wireDescription{Type: desc.Type.String(), SDP: desc.SDP})
	if err != nil {
		return "", fmt.Errorf("encode session description: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode parses the transport form back into a session description.
//
// The empty string decodes to the zero description with a nil error; callers
// treat that as "no description". A description whose SDP body is empty is
// returned as-is for the same reason. Anything else that fails to decode is
// reported as a *DecodeError.
func Decode(text string) (webrtc.SessionDescription, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return webrtc.SessionDescription{}, nil
	}

	raw, err := decodeBase64(text)
	if err != nil {
		return webrtc.SessionDescription{}, &DecodeError{Stage: "base64", Err: err}
	}

	var wire wireDescription
	if err := json.Unmarshal(raw, &wire); err != nil {
		return webrtc.SessionDescription{}, &DecodeError{Stage: "json", Err: err}
	}

	typ := webrtc.NewSDPType(wire.Type)
	if typ == webrtc.SDPTypeUnknown {
		return webrtc.SessionDescription{}, &DecodeError{
			Stage: "type",
			Err:   fmt.Errorf("%w: %q", errUnknownType, wire.Type),
		}
	}

	if wire.SDP != "" {
		var parsed sdp.SessionDescription
		if err := parsed.Unmarshal([]byte(wire.SDP)); err != nil {
			return webrtc.SessionDescription{}, &DecodeError{Stage: "sdp", Err: err}
		}
	}

	return webrtc.SessionDescription{Type: typ, SDP: wire.SDP}, nil
}

func decodeBase64(text string) ([]byte, error) {
	var firstErr error
	for _, enc := range encodings {
		raw, err := enc.DecodeString(text)
		if err == nil {
			return raw, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}
