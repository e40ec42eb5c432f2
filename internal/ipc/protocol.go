// Package ipc is the control socket of a running wallpaper daemon. Each
// connection carries one JSON request line and one JSON response line.
package ipc

import (
	"encoding/json"
	"fmt"
	"io"
)

// CommandType names a control command.
type CommandType string

const (
	CommandGetStatus CommandType = "GET_STATUS"
	CommandRedraw    CommandType = "REDRAW"
)

// Response status values.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response carries Data on success and Error otherwise.
type Response struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Err returns the daemon's error, or nil for a successful response.
func (r *Response) Err() error {
	if r.Status == StatusError {
		return fmt.Errorf("daemon error: %s", r.Error)
	}
	return nil
}

// StatusData is the GET_STATUS payload.
type StatusData struct {
	PID           int      `json:"pid"`
	Display       string   `json:"display"`
	Screens       []int    `json:"screens"`
	Files         []string `json:"files"`
	Renders       int      `json:"renders"`
	UptimeSeconds int64    `json:"uptime_seconds"`
}

func okResponse(data any) (*Response, error) {
	resp := &Response{Status: StatusOK}
	if data == nil {
		return resp, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode response data: %w", err)
	}
	resp.Data = raw
	return resp, nil
}

func errorResponse(format string, args ...any) *Response {
	return &Response{Status: StatusError, Error: fmt.Sprintf(format, args...)}
}

func decodeRequest(line []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return &req, nil
}

// writeLine encodes v as a single newline-terminated JSON line.
func writeLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
