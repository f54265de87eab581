package gateway

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

// DefaultSocketTimeout bounds the full dial-write-read exchange with a
// socket plant so an orchestrator request can never hang on a dead plant.
const DefaultSocketTimeout = 10 * time.Second

// ContSocketGateway speaks the newline-delimited TCP protocol used by
// ContSocket-type plants. One adapter call is one connection lifecycle:
// dial, write a single command line, read a single response line, close.
type ContSocketGateway struct {
	timeout time.Duration
}

// NewContSocket constructs a ContSocketGateway. A non-positive timeout falls
// back to DefaultSocketTimeout.
func NewContSocket(timeout time.Duration) *ContSocketGateway {
	if timeout <= 0 {
		timeout = DefaultSocketTimeout
	}
	return &ContSocketGateway{timeout: timeout}
}

// GetCapacity sends `GET_CAPACITY [date]` and parses the numeric reply.
func (g *ContSocketGateway) GetCapacity(ctx context.Context, plant *model.Plant, date time.Time) (float64, error) {
	cmd := "GET_CAPACITY"
	if !date.IsZero() {
		cmd += " " + date.Format(model.DateLayout)
	}

	resp, err := g.exchange(ctx, plant, cmd)
	if err != nil {
		return 0, err
	}
	if strings.HasPrefix(resp, "ERROR") {
		return 0, fmt.Errorf("plant %s rejected capacity query: %s", plant.PlantID, resp)
	}

	capacity, err := strconv.ParseFloat(resp, 64)
	if err != nil {
		return 0, fmt.Errorf("parse capacity reply %q from plant %s: %w", resp, plant.PlantID, err)
	}
	return capacity, nil
}

// NotifyIncoming sends `NOTIFY <dumpsterCount> <totalContainers> [date]` and
// expects the literal reply `OK`.
func (g *ContSocketGateway) NotifyIncoming(ctx context.Context, plant *model.Plant, dumpsterIDs []string, totalContainers int, date time.Time) error {
	cmd := fmt.Sprintf("NOTIFY %d %d", len(dumpsterIDs), totalContainers)
	if !date.IsZero() {
		cmd += " " + date.Format(model.DateLayout)
	}

	resp, err := g.exchange(ctx, plant, cmd)
	if err != nil {
		return err
	}
	if strings.HasPrefix(resp, "ERROR") {
		return fmt.Errorf("plant %s rejected notification: %s", plant.PlantID, resp)
	}
	return nil
}

// exchange performs one command/response round trip. The connection is closed
// on every exit path, and both the dial and the I/O are deadline-bounded.
func (g *ContSocketGateway) exchange(ctx context.Context, plant *model.Plant, cmd string) (string, error) {
	addr := net.JoinHostPort(plant.Host, strconv.Itoa(plant.Port))

	dialer := net.Dialer{Timeout: g.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("dial plant %s at %s: %w", plant.PlantID, addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(g.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("set deadline for plant %s: %w", plant.PlantID, err)
	}

	if _, err := fmt.Fprintf(conn, "%s\n", cmd); err != nil {
		return "", fmt.Errorf("write to plant %s: %w", plant.PlantID, err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read from plant %s: %w", plant.PlantID, err)
	}
	return strings.TrimSpace(line), nil
}
