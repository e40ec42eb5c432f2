package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"
)

// Handler answers the commands of the control socket.
type Handler interface {
	Status() StatusData
	Redraw(ctx context.Context) error
}

// Server serves the control socket until Stop.
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server for socketPath. A stale socket left by a
// previous daemon is removed.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Start listens on the socket, readable by the owner only.
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Debug("control socket listening", "path", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("control socket accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("control socket read error", "error", err)
		return
	}

	var resp *Response
	if req, err := decodeRequest(line); err != nil {
		resp = errorResponse("invalid request: %v", err)
	} else {
		resp = s.handleCommand(req)
	}
	if err := writeLine(conn, resp); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandRedraw:
		return s.handleRedraw()
	default:
		return errorResponse("unknown command: %s", req.Command)
	}
}

func (s *Server) handleGetStatus() *Response {
	status := s.handler.Status()
	status.PID = os.Getpid()
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())

	resp, err := okResponse(status)
	if err != nil {
		return errorResponse("%v", err)
	}
	return resp
}

// handleRedraw blocks until the daemon has redrawn, for at most 30 seconds.
func (s *Server) handleRedraw() *Response {
	s.logger.Debug("control socket: redraw")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.handler.Redraw(ctx); err != nil {
		return errorResponse("redraw failed: %v", err)
	}
	resp, _ := okResponse(nil)
	return resp
}

// Stop shuts down the IPC server, waits for requests in flight and
// removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
