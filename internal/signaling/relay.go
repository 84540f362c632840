package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// RelayEndpoint selects which side of the relay broker a session talks to.
type RelayEndpoint string

const (
	EndpointHost RelayEndpoint = "/host" // publisher
	EndpointPeer RelayEndpoint = "/peer" // subscriber
)

// RelayTransport posts the offer to a relay broker wrapped in a
// {"message", "status"} envelope and reads {"message"} or {"error"} back.
type RelayTransport struct {
	client *http.Client
	url    string
}

var _ Transport = (*RelayTransport)(nil)

// NewRelayTransport binds a relay transport to baseURL and endpoint. A nil
// client means http.DefaultClient.
func NewRelayTransport(baseURL string, endpoint RelayEndpoint, client *http.Client) *RelayTransport {
	return &RelayTransport{
		client: client,
		url:    joinPath(baseURL, string(endpoint)),
	}
}

// URL returns the endpoint the transport posts to.
func (t *RelayTransport) URL() string { return t.url }

// Exchange implements Transport.
func (t *RelayTransport) Exchange(ctx context.Context, encodedOffer string) (string, error) {
	body, err := json.Marshal(relayRequest{Message: encodedOffer, Status: http.StatusOK})
	if err != nil {
		return "", &TransportError{Endpoint: t.url, Err: err}
	}

	var resp relayResponse
	if err := post(ctx, t.client, t.url, "application/json", body, &resp); err != nil {
		return "", err
	}

	answer, err := resolve(resp.Message, resp.Error)
	if errors.Is(err, errAmbiguousResponse) {
		return "", &TransportError{Endpoint: t.url, StatusCode: http.StatusOK, Err: err}
	}
	return answer, err
}
