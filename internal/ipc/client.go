package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client talks to the daemon of one display. Every call dials a fresh
// connection.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a client for the socket at socketPath. The timeout
// covers a redraw, which the server itself bounds at 30 seconds.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: 35 * time.Second}
}

func (c *Client) roundTrip(cmd CommandType) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}

	if err := writeLine(conn, &Request{Command: cmd}); err != nil {
		return nil, fmt.Errorf("send %s: %w", cmd, err)
	}
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", cmd, err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", cmd, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Redraw asks the daemon to redraw every screen and waits until it has.
func (c *Client) Redraw() error {
	_, err := c.roundTrip(CommandRedraw)
	return err
}

func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.roundTrip(CommandGetStatus)
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}
