package contsocket

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/dumpster-coordination/internal/ledger"
	"github.com/greenloop/dumpster-coordination/internal/model"
)

func newTestServer(t *testing.T, base float64) *Server {
	t.Helper()
	return NewServer("CONTSO-01", ledger.New(base, ledger.DefaultUnitsPerTon), nil)
}

func TestHandleGetCapacityWithDate(t *testing.T) {
	s := newTestServer(t, 80.5)

	reply := s.Handle("GET_CAPACITY 2025-11-05")
	capacity, err := strconv.ParseFloat(reply, 64)
	require.NoError(t, err, "reply must be a single numeric line, got %q", reply)
	assert.Equal(t, 80.5, capacity)
}

func TestHandleGetCapacityWithoutDateUsesToday(t *testing.T) {
	s := newTestServer(t, 80.5)
	s.Ledger().Reserve(time.Now(), 5000)

	reply := s.Handle("GET_CAPACITY")
	capacity, err := strconv.ParseFloat(reply, 64)
	require.NoError(t, err)
	assert.InDelta(t, 75.5, capacity, 1e-9)
}

func TestHandleNotifyDebitsOnlyThatDate(t *testing.T) {
	s := newTestServer(t, 80.5)

	assert.Equal(t, "OK", s.Handle("NOTIFY 2 5000 2025-11-05"))
	assert.Equal(t, "OK", s.Handle("NOTIFY 1 3000 2025-11-06"))

	day1, _ := time.Parse(model.DateLayout, "2025-11-05")
	day2, _ := time.Parse(model.DateLayout, "2025-11-06")
	assert.InDelta(t, 75.5, s.Ledger().Available(day1), 1e-9)
	assert.InDelta(t, 77.5, s.Ledger().Available(day2), 1e-9)
}

func TestHandleNotifyMissingTokens(t *testing.T) {
	s := newTestServer(t, 80.5)

	reply := s.Handle("NOTIFY 1")
	assert.True(t, strings.HasPrefix(reply, "ERROR"), "got %q", reply)
}

func TestHandleNotifyBadContainerCount(t *testing.T) {
	s := newTestServer(t, 80.5)

	reply := s.Handle("NOTIFY 1 lots")
	assert.True(t, strings.HasPrefix(reply, "ERROR"), "got %q", reply)
}

func TestHandleUnknownCommand(t *testing.T) {
	s := newTestServer(t, 80.5)

	assert.True(t, strings.HasPrefix(s.Handle("SELF_DESTRUCT"), "ERROR"))
	assert.True(t, strings.HasPrefix(s.Handle(""), "ERROR"))
}

func TestHandleNotifyInvalidDateFallsBackToToday(t *testing.T) {
	s := newTestServer(t, 80.5)

	reply := s.Handle("NOTIFY 1 2000 not-a-date")
	require.Equal(t, "OK", reply, "invalid date token must not fail the command")
	assert.Equal(t, 2000, s.Ledger().Reserved(time.Now()))
}

func TestHandleGetCapacityInvalidDateFallsBackToToday(t *testing.T) {
	s := newTestServer(t, 80.5)
	s.Ledger().Reserve(time.Now(), 5000)

	reply := s.Handle("GET_CAPACITY 05/11/2025")
	capacity, err := strconv.ParseFloat(reply, 64)
	require.NoError(t, err)
	assert.InDelta(t, 75.5, capacity, 1e-9)
}

// TestServePipelinedCommands runs a real listener and drives several commands
// over one connection; each must produce exactly one response line and a
// malformed command must not poison the connection.
func TestServePipelinedCommands(t *testing.T) {
	s := newTestServer(t, 80.5)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Serve(ctx, lis) }()

	conn, err := net.Dial("tcp", lis.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))

	reader := bufio.NewReader(conn)
	send := func(cmd string) string {
		_, err := fmt.Fprintf(conn, "%s\n", cmd)
		require.NoError(t, err)
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		return strings.TrimSpace(line)
	}

	reply := send("GET_CAPACITY 2025-11-05")
	capacity, err := strconv.ParseFloat(reply, 64)
	require.NoError(t, err)
	assert.Equal(t, 80.5, capacity)

	assert.Equal(t, "OK", send("NOTIFY 2 5000 2025-11-05"))
	assert.True(t, strings.HasPrefix(send("NOTIFY 1"), "ERROR"))

	reply = send("GET_CAPACITY 2025-11-05")
	capacity, err = strconv.ParseFloat(reply, 64)
	require.NoError(t, err)
	assert.InDelta(t, 75.5, capacity, 1e-9)
}
