package signaling

import (
	"errors"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// relayRequest is the body posted to the relay broker's /host and /peer
// endpoints and written over the WebSocket flavor.
type relayRequest struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// relayResponse is the broker's reply. Message holds the encoded answer.
type relayResponse struct {
	Message *string `json:"message"`
	Error   *string `json:"error"`
}

// sfuResponse is the SFU's reply to POST /sdp.
type sfuResponse struct {
	Answer *string `json:"answer"`
	Error  *string `json:"error"`
}

var errAmbiguousResponse = errors.New("response carries both an answer and an error")

// resolve applies the answer-or-error rule shared by all response shapes.
// A non-nil error field wins only when it is the sole field present.
func resolve(answer, errMsg *string) (string, error) {
	switch {
	case answer != nil && errMsg != nil:
		return "", errAmbiguousResponse
	case errMsg != nil:
		return "", &RejectedError{Message: *errMsg}
	case answer != nil:
		return *answer, nil
	default:
		return "", nil
	}
}
