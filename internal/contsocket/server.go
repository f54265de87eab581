// Package contsocket implements the remote plant process that speaks the
// newline-delimited TCP protocol. Each accepted connection is served by its
// own goroutine and may pipeline any number of commands, each producing
// exactly one response line.
package contsocket

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/greenloop/dumpster-coordination/internal/ledger"
	"github.com/greenloop/dumpster-coordination/internal/model"
)

// Server owns one plant's capacity ledger and serves the line protocol.
type Server struct {
	plantID string
	ledger  *ledger.Ledger
	log     *slog.Logger
}

// NewServer constructs a Server for a single plant.
func NewServer(plantID string, led *ledger.Ledger, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{plantID: plantID, ledger: led, log: log}
}

// Ledger exposes the server's capacity ledger, for maintenance loops.
func (s *Server) Ledger() *ledger.Ledger {
	return s.ledger
}

// Serve accepts connections until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	s.log.Info("connection opened", "plant", s.plantID, "remote", conn.RemoteAddr().String())

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		reply := s.Handle(sc.Text())
		if _, err := fmt.Fprintln(conn, reply); err != nil {
			s.log.Warn("write failed", "plant", s.plantID, "error", err)
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.log.Warn("read failed", "plant", s.plantID, "error", err)
	}
}

// Handle processes one command line and returns the single response line.
// Malformed input yields an ERROR reply; the connection stays usable for
// further commands.
func (s *Server) Handle(line string) string {
	tokens := strings.Fields(line)
	switch {
	case len(tokens) >= 1 && tokens[0] == "GET_CAPACITY":
		return s.handleGetCapacity(tokens)
	case len(tokens) >= 3 && tokens[0] == "NOTIFY":
		return s.handleNotify(tokens)
	default:
		return "ERROR: invalid command"
	}
}

// handleGetCapacity serves `GET_CAPACITY [date]`. The date token is optional;
// absent means the server's current date.
func (s *Server) handleGetCapacity(tokens []string) string {
	date := time.Now()
	if len(tokens) > 1 {
		date = s.parseDateLenient(tokens[1])
	}

	capacity := s.ledger.Available(date)
	return strconv.FormatFloat(capacity, 'f', -1, 64)
}

// handleNotify serves `NOTIFY <dumpsterCount> <totalContainers> [date]`.
func (s *Server) handleNotify(tokens []string) string {
	totalContainers, err := strconv.Atoi(tokens[2])
	if err != nil {
		return "ERROR: invalid number format"
	}

	date := time.Now()
	if len(tokens) > 3 {
		date = s.parseDateLenient(tokens[3])
	}

	s.ledger.Reserve(date, totalContainers)
	s.log.Info("notification received",
		"plant", s.plantID,
		"dumpsters", tokens[1],
		"containers", totalContainers,
		"date", date.Format(model.DateLayout),
		"available_tons", s.ledger.Available(date),
	)
	return "OK"
}

// parseDateLenient applies the protocol's leniency policy: an unparsable
// date token is logged as a warning and the operation proceeds with today.
func (s *Server) parseDateLenient(token string) time.Time {
	date, err := time.Parse(model.DateLayout, token)
	if err != nil {
		s.log.Warn("invalid date token, using today", "plant", s.plantID, "token", token)
		return time.Now()
	}
	return date
}
