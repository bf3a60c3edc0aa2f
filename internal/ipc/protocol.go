package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/traycast/internal/daemon"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandRefresh     CommandType = "REFRESH"
	CommandOpenDetail  CommandType = "OPEN_DETAIL"
	CommandCloseDetail CommandType = "CLOSE_DETAIL"
	CommandReload      CommandType = "RELOAD"
	CommandShutdown    CommandType = "SHUTDOWN"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS: the controller snapshot plus
// process details.
type StatusData struct {
	daemon.Status
	PID           int   `json:"pid"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// OpenDetailPayload is the payload for OPEN_DETAIL. View is "forecast"
// (default) or "settings".
type OpenDetailPayload struct {
	View string `json:"view,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
