package lineproto

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/dmitrijs2005/wlog/internal/codec"
	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/merge"
	"github.com/dmitrijs2005/wlog/internal/models"
)

// LocalStore is the local side of a sync.
type LocalStore interface {
	merge.Store
	SelectAll(ctx context.Context) ([]models.Entry, error)
}

// Client talks to a line protocol server. Requests are strictly sequential.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

func Dial(ctx context.Context, address string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", common.ErrBrokenConnection, address, err)
	}
	return NewClient(conn), nil
}

func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, r: bufio.NewReader(conn)}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// roundTrip sends one request and reads the first response line. The
// deadline of ctx, if any, applies to both.
func (c *Client) roundTrip(ctx context.Context, req string) (string, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetDeadline(dl)
		defer func() { _ = c.conn.SetDeadline(time.Time{}) }()
	}
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	if _, err := io.WriteString(c.conn, req); err != nil {
		return "", c.broken(ctx, err)
	}
	return c.readLine(ctx)
}

func (c *Client) readLine(ctx context.Context) (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil && len(line) == 0 {
		return "", c.broken(ctx, err)
	}
	if msg, ok := codec.ParseError(line); ok {
		return "", fmt.Errorf("remote: %s", msg)
	}
	return line, nil
}

func (c *Client) broken(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", common.ErrBrokenConnection, ctx.Err())
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: peer closed", common.ErrBrokenConnection)
	}
	return fmt.Errorf("%w: %v", common.ErrBrokenConnection, err)
}

func (c *Client) Ping(ctx context.Context) error {
	line, err := c.roundTrip(ctx, codec.PingRequest())
	if err != nil {
		return err
	}
	if line != codec.Pong {
		return fmt.Errorf("unexpected ping response %q", line)
	}
	return nil
}

// Log appends message on the remote and returns the message as stored.
func (c *Client) Log(ctx context.Context, message string) (string, error) {
	line, err := c.roundTrip(ctx, codec.LogRequest(message))
	if err != nil {
		return "", err
	}
	logged, ok := codec.ParseLogged(line)
	if !ok {
		return "", fmt.Errorf("unexpected log response %q", line)
	}
	return logged, nil
}

// Dump returns every remote entry in insertion order. Lines that do not
// decode are skipped and counted; the dump is always read up to its
// terminator so the connection stays usable.
func (c *Client) Dump(ctx context.Context) ([]models.Entry, int, error) {
	line, err := c.roundTrip(ctx, codec.DumpRequest())
	if err != nil {
		return nil, 0, err
	}

	var (
		result   []models.Entry
		rejected int
	)
	for line != codec.DumpEnd {
		e, ok, err := codec.ParseImportLine(line)
		if err == nil && ok {
			result = append(result, e)
		} else {
			rejected++
		}

		if line, err = c.readLine(ctx); err != nil {
			return nil, rejected, err
		}
	}
	return result, rejected, nil
}

// DumpFrom returns the remote entries created on date.
func (c *Client) DumpFrom(ctx context.Context, date string) ([]models.Entry, error) {
	line, err := c.roundTrip(ctx, codec.DumpFromRequest(date))
	if err != nil {
		return nil, err
	}
	return codec.DecodeList(line)
}

func (c *Client) Import(ctx context.Context, e models.Entry) error {
	line, err := c.roundTrip(ctx, codec.ImportRequest(e))
	if err != nil {
		return err
	}
	if line != codec.OK {
		return fmt.Errorf("unexpected import response %q", line)
	}
	return nil
}

// SyncResult counts the entries moved in each direction.
type SyncResult struct {
	Pulled   int
	Pushed   int
	Rejected int
}

// Sync merges every remote entry into local, then imports every local entry
// into the remote. Afterwards both sides hold the union of their ids.
func (c *Client) Sync(ctx context.Context, local LocalStore) (SyncResult, error) {
	var res SyncResult

	remote, rejected, err := c.Dump(ctx)
	res.Rejected = rejected
	if err != nil {
		return res, fmt.Errorf("dump: %w", err)
	}
	if res.Pulled, err = merge.MergeAll(ctx, local, remote); err != nil {
		return res, err
	}

	all, err := local.SelectAll(ctx)
	if err != nil {
		return res, err
	}
	for _, e := range all {
		if err := c.Import(ctx, e); err != nil {
			return res, fmt.Errorf("import %s: %w", e.ID, err)
		}
		res.Pushed++
	}

	return res, nil
}
