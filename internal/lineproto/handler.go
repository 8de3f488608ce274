package lineproto

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/dmitrijs2005/wlog/internal/codec"
	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/logging"
	"github.com/dmitrijs2005/wlog/internal/models"
)

// maxLineBytes caps a single command line, terminator included.
const maxLineBytes = 1 << 20

// EntryService is what a connection needs from the entry store.
type EntryService interface {
	Log(ctx context.Context, message string) (models.Entry, error)
	All(ctx context.Context) ([]models.Entry, error)
	ByDate(ctx context.Context, date string) ([]models.Entry, error)
	Import(ctx context.Context, e models.Entry) (bool, error)
}

// Handler serves one connection. The reader loop parses commands and queues
// responses; a separate writer loop flushes them to the peer.
type Handler struct {
	conn   net.Conn
	svc    EntryService
	logger logging.Logger
	out    *Queue

	maxLine int
}

func NewHandler(conn net.Conn, svc EntryService, logger logging.Logger, queueLimit int) *Handler {
	return &Handler{
		conn:   conn,
		svc:    svc,
		logger: logger,
		out:    NewQueue(queueLimit),

		maxLine: maxLineBytes,
	}
}

// Serve runs until the peer goes away, a write fails or ctx is cancelled.
// It always returns an error wrapping common.ErrBrokenConnection and always
// leaves the connection closed.
func (h *Handler) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = h.conn.Close() })
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(ctx)
	}()

	err := h.readLoop(ctx)

	h.out.Close()
	<-done
	_ = h.conn.Close()

	return err
}

func (h *Handler) readLoop(ctx context.Context) error {
	r := bufio.NewReader(h.conn)

	for {
		line, tooLong, err := readLine(r, h.maxLine)

		var chunks []string
		switch {
		case tooLong:
			h.logger.Warn(ctx, "line too long", "limit", h.maxLine)
			chunks = []string{codec.MalformedEntry(
				fmt.Errorf("%w: line longer than %d bytes", common.ErrMalformedEntry, h.maxLine))}
		case len(line) > 0:
			// a final line without terminator is still a command
			chunks = h.handle(ctx, line)
		}
		for _, chunk := range chunks {
			if !h.out.Push(chunk) {
				return fmt.Errorf("%w: writer stopped", common.ErrBrokenConnection)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: peer closed", common.ErrBrokenConnection)
			}
			return fmt.Errorf("%w: %v", common.ErrBrokenConnection, err)
		}
	}
}

// readLine reads up to and including the next '\n'. A line longer than limit
// is consumed and dropped, and tooLong is set; memory use stays bounded by
// limit either way.
func readLine(r *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return string(buf), tooLong, err
	}
}

func (h *Handler) writeLoop(ctx context.Context) {
	for {
		chunk, ok := h.out.Pop()
		if !ok {
			return
		}
		if _, err := io.WriteString(h.conn, chunk); err != nil {
			h.logger.Debug(ctx, "write failed", "error", err)
			h.out.Abort()
			// unblocks the reader
			_ = h.conn.Close()
			return
		}
	}
}

// handle returns the response lines for one request line.
func (h *Handler) handle(ctx context.Context, line string) []string {
	cmd := codec.ParseCommand(line)
	h.logger.Debug(ctx, "command", "verb", cmd.Verb.String())

	switch cmd.Verb {
	case codec.VerbPing:
		return []string{codec.Pong}

	case codec.VerbLog:
		e, err := h.svc.Log(ctx, cmd.Arg)
		if err != nil {
			return h.storeError(ctx, err)
		}
		return []string{codec.Logged(e.Message)}

	case codec.VerbDump:
		es, err := h.svc.All(ctx)
		if err != nil {
			return h.storeError(ctx, err)
		}
		out := make([]string, 0, len(es)+1)
		for _, e := range es {
			out = append(out, codec.ImportLine(e))
		}
		return append(out, codec.DumpEnd)

	case codec.VerbDumpFrom:
		es, err := h.svc.ByDate(ctx, cmd.Arg)
		if err != nil {
			return h.storeError(ctx, err)
		}
		return []string{codec.DumpFromLine(es)}

	case codec.VerbImport:
		e, err := codec.DecodeEntry(cmd.Arg)
		if err != nil {
			h.logger.Warn(ctx, "rejected entry", "error", err)
			return []string{codec.MalformedEntry(err)}
		}
		if _, err := h.svc.Import(ctx, e); err != nil {
			return h.storeError(ctx, err)
		}
		return []string{codec.OK}

	default:
		return []string{codec.UnknownCommand(cmd.Raw)}
	}
}

func (h *Handler) storeError(ctx context.Context, err error) []string {
	h.logger.Error(ctx, "store operation failed", "error", err)
	return []string{codec.ErrorLine(err)}
}
