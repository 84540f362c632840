// Package chat is a client for the text chat that accompanies a screen
// share. Frames are JSON over a WebSocket.
package chat

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Message is one chat line and the address of its author.
type Message struct {
	IP      string `json:"ip"`
	Message string `json:"message"`
}

// DecodeFrame parses an inbound frame. A frame is either a single message
// or a backlog keyed by author address; backlog authors are returned in
// sorted order, each author's lines in their original order.
func DecodeFrame(data []byte) ([]Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("malformed chat frame: %w", err)
	}

	if _, ok := fields["ip"]; ok {
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("malformed chat message: %w", err)
		}
		return []Message{msg}, nil
	}

	ips := make([]string, 0, len(fields))
	for ip := range fields {
		ips = append(ips, ip)
	}
	sort.Strings(ips)

	var out []Message
	for _, ip := range ips {
		var lines []string
		if err := json.Unmarshal(fields[ip], &lines); err != nil {
			return nil, fmt.Errorf("malformed chat backlog for %s: %w", ip, err)
		}
		for _, line := range lines {
			out = append(out, Message{IP: ip, Message: line})
		}
	}
	return out, nil
}

// Log is the append-only list of every message seen in a session. It is
// unbounded and does not deduplicate.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// Append adds msgs in order.
func (l *Log) Append(msgs ...Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msgs...)
}

// Messages returns a copy of the log.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Message(nil), l.messages...)
}

// Len returns the number of logged messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
