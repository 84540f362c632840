package signaling

import (
	"context"
	"errors"
	"net/http"
)

// SFUTransport posts the raw encoded offer to an SFU's /sdp endpoint and
// reads {"answer"} back.
type SFUTransport struct {
	client *http.Client
	url    string
}

var _ Transport = (*SFUTransport)(nil)

// NewSFUTransport binds an SFU transport to baseURL. A nil client means
// http.DefaultClient.
func NewSFUTransport(baseURL string, client *http.Client) *SFUTransport {
	return &SFUTransport{
		client: client,
		url:    joinPath(baseURL, "/sdp"),
	}
}

// URL returns the endpoint the transport posts to.
func (t *SFUTransport) URL() string { return t.url }

// Exchange implements Transport.
func (t *SFUTransport) Exchange(ctx context.Context, encodedOffer string) (string, error) {
	var resp sfuResponse
	if err := post(ctx, t.client, t.url, "text/plain; charset=utf-8", []byte(encodedOffer), &resp); err != nil {
		return "", err
	}

	answer, err := resolve(resp.Answer, resp.Error)
	if errors.Is(err, errAmbiguousResponse) {
		return "", &TransportError{Endpoint: t.url, StatusCode: http.StatusOK, Err: err}
	}
	return answer, err
}
