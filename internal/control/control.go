// Package control accepts externally-delivered ViewerCommands over a local
// line-delimited IPC endpoint and forwards them to the viewer (spec
// §4.7/§6.2). The accept-loop-plus-per-connection-goroutine shape is
// adapted from the teacher's pkg/api package (its HTTP listener lifecycle
// and graceful-shutdown-on-context-cancel pattern), generalized here from
// request/response HTTP to a long-lived line-oriented socket connection.
package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dixieflatline76/photoframe/internal/events"
	"github.com/dixieflatline76/photoframe/util/log"
)

// Server listens on a unix-domain socket and forwards each recognized
// command line to out. The send to out is backpressured (spec §4.7: "full
// channel indicates viewer starvation and MUST NOT drop"); a slow or absent
// reader stalls the connection's command stream, never silently drops one.
type Server struct {
	socketPath string
	out        chan<- events.ViewerCommand
}

// New builds a Server bound to socketPath (spec §6.1 control-socket-path).
func New(socketPath string, out chan<- events.ViewerCommand) *Server {
	return &Server{socketPath: socketPath, out: out}
}

// Run listens and serves connections until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	_ = os.Remove(s.socketPath) // drop a stale socket from an unclean prior shutdown

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("control: listen on %s: %w", s.socketPath, err)
	}
	defer func() {
		ln.Close()
		_ = os.Remove(s.socketPath)
	}()

	closed := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-closed:
		}
	}()
	defer close(closed)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warnf("control: accept: %v", err)
			continue
		}
		go s.handle(ctx, conn)
	}
}

// handle reads line-delimited commands from one connection until it
// closes or ctx is cancelled. Each connection gets a uuid session id
// purely for log correlation across concurrent clients.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	sessionID := uuid.New().String()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, ok := ParseCommand(line)
		if !ok {
			log.Warnf("control[%s]: unrecognized command %q", sessionID, line)
			continue
		}
		select {
		case s.out <- cmd:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Debugf("control[%s]: connection closed: %v", sessionID, err)
	}
}

// ParseCommand maps a recognized command line (spec §6.2) to a
// ViewerCommand.
func ParseCommand(line string) (events.ViewerCommand, bool) {
	switch line {
	case "sleep":
		return events.ViewerCommand{Kind: events.SetState, DesiredState: events.Asleep}, true
	case "wake":
		return events.ViewerCommand{Kind: events.SetState, DesiredState: events.Awake}, true
	case "toggle":
		return events.ViewerCommand{Kind: events.ToggleState}, true
	default:
		return events.ViewerCommand{}, false
	}
}
