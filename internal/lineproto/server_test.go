package lineproto

import (
	"bufio"
	"context"
	"io"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/wlog/internal/codec"
	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/logging"
	"github.com/dmitrijs2005/wlog/internal/models"
	"github.com/dmitrijs2005/wlog/internal/services"
	"github.com/dmitrijs2005/wlog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "wlog.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// startServer serves a fresh store on a loopback port.
func startServer(t *testing.T) (string, *store.Store) {
	t.Helper()
	st := newStore(t)
	svc := services.NewEntryService(st, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServer("", logging.Discard(), svc, 0).Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return ln.Addr().String(), st
}

func dial(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestServer_UnknownCommandKeepsConnection(t *testing.T) {
	addr, _ := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	r := bufio.NewReader(conn)

	assert.Equal(t, "Error: Unknown command FOO\n", exchange(t, conn, r, "FOO\n"))
	assert.Equal(t, "PONG\n", exchange(t, conn, r, "PING\n"))
}

func TestServer_DumpAndDateFilter(t *testing.T) {
	addr, _ := startServer(t)
	c := dial(t, addr)
	ctx := context.Background()

	first := models.NewEntryOn("2024-01-01", "first")
	second := models.NewEntryOn("2024-01-02", "second")
	require.NoError(t, c.Import(ctx, first))
	require.NoError(t, c.Import(ctx, second))

	day, err := c.DumpFrom(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{first}, day)

	none, err := c.DumpFrom(ctx, "2023-01-01")
	require.NoError(t, err)
	assert.Empty(t, none)

	all, rejected, err := c.Dump(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{first, second}, all)
	assert.Zero(t, rejected)

	// raw form of the dump
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	r := bufio.NewReader(conn)
	assert.Equal(t, codec.ImportLine(first), exchange(t, conn, r, "DUMP\n"))
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, codec.ImportLine(second), line)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "\n", line)
}

func TestServer_PingAndLog(t *testing.T) {
	addr, st := startServer(t)
	c := dial(t, addr)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	msg, err := c.Log(ctx, "shipped\nrelease")
	require.NoError(t, err)
	assert.Equal(t, "shipped release", msg)

	all, err := st.SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "shipped release", all[0].Message)
}

func TestServer_MalformedImport(t *testing.T) {
	addr, _ := startServer(t)
	c := dial(t, addr)
	ctx := context.Background()

	_, err := c.roundTrip(ctx, "IMPORT {\"message\":\"no id\",\"time_created\":\"2024-01-01\"}\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Malformed entry missing id")

	require.NoError(t, c.Ping(ctx))
}

func TestServer_ConcurrentImportsOfSameID(t *testing.T) {
	addr, st := startServer(t)
	ctx := context.Background()
	e := models.NewEntryOn("2024-01-01", "raced")

	clients := []*Client{dial(t, addr), dial(t, addr)}
	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				assert.NoError(t, c.Import(ctx, e))
			}
		}(c)
	}
	wg.Wait()

	all, err := st.SelectAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Entry{e}, all)
}

func TestServer_PartialLastLineIsProcessed(t *testing.T) {
	addr, _ := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "PING\nPING")
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, "PONG\nPONG\n", string(out))
}

func TestClient_Sync(t *testing.T) {
	addr, remote := startServer(t)
	ctx := context.Background()

	b1 := models.NewEntryOn("2024-01-03", "b1")
	require.NoError(t, remote.Insert(ctx, &b1))

	local := newStore(t)
	a1 := models.NewEntryOn("2024-01-01", "a1")
	a2 := models.NewEntryOn("2024-01-02", "a2")
	require.NoError(t, local.Insert(ctx, &a1))
	require.NoError(t, local.Insert(ctx, &a2))

	c := dial(t, addr)
	res, err := c.Sync(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pulled)
	assert.Equal(t, 3, res.Pushed)

	want := []models.Entry{a1, a2, b1}
	got, err := local.SelectAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)

	got, err = remote.SelectAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)

	// a second round moves nothing new
	res, err = c.Sync(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Pulled)
	got, err = remote.SelectAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestServer_RunBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := NewServer(ln.Addr().String(), logging.Discard(), &fakeService{}, 0)
	err = s.Run(context.Background())
	require.ErrorIs(t, err, common.ErrBindFailure)
}

func TestClient_ServerGone(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			_ = conn.Close()
		}
	}()
	defer ln.Close()

	c := dial(t, ln.Addr().String())
	err = c.Ping(context.Background())
	require.ErrorIs(t, err, common.ErrBrokenConnection)
	assert.True(t, strings.Contains(err.Error(), "broken connection"))
}
