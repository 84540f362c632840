package signaling

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// WSTransport performs the relay exchange over a short-lived WebSocket: one
// envelope out, one envelope back, then the socket is closed.
type WSTransport struct {
	url    string
	header http.Header
}

var _ Transport = (*WSTransport)(nil)

// NewWSTransport binds a WebSocket transport to a ws:// or wss:// URL.
// header is sent with the opening handshake and may be nil.
func NewWSTransport(url string, header http.Header) *WSTransport {
	return &WSTransport{url: url, header: header}
}

// URL returns the endpoint the transport dials.
func (t *WSTransport) URL() string { return t.url }

// Exchange implements Transport.
func (t *WSTransport) Exchange(ctx context.Context, encodedOffer string) (string, error) {
	conn, err := connect(ctx, t.url, t.header)
	if err != nil {
		return "", &TransportError{Endpoint: t.url, Err: err}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
		_ = conn.SetWriteDeadline(deadline)
	}

	// Unblock the read below when ctx ends before the deadline does.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(relayRequest{Message: encodedOffer, Status: http.StatusOK}); err != nil {
		return "", &TransportError{Endpoint: t.url, Err: ctxOr(ctx, err)}
	}

	var resp relayResponse
	if err := conn.ReadJSON(&resp); err != nil {
		return "", &TransportError{Endpoint: t.url, Err: ctxOr(ctx, err)}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	answer, err := resolve(resp.Message, resp.Error)
	if errors.Is(err, errAmbiguousResponse) {
		return "", &TransportError{Endpoint: t.url, Err: err}
	}
	return answer, err
}

// connect dials the given WebSocket URL and returns the connection.
func connect(ctx context.Context, url string, header http.Header) (*websocket.Conn, error) {
	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to WS server: %w", err)
	}
	return conn, nil
}

// ctxOr prefers the context's error so callers can match deadlines with
// errors.Is even when the socket reported the failure first.
func ctxOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return err
}
