package grpcsync

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/merge"
	"github.com/dmitrijs2005/wlog/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type LocalStore interface {
	merge.Store
	SelectAll(ctx context.Context) ([]models.Entry, error)
}

type Client struct {
	conn   grpc.ClientConnInterface
	closer func() error
	secret string
}

// Dial connects without TLS; the service is meant for trusted networks.
func Dial(address, secret string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, closer: conn.Close, secret: secret}, nil
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) authorized(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.AuthorizationHeaderName, c.secret)
}

func (c *Client) Ping(ctx context.Context) error {
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, pingMethod, &emptypb.Empty{}, out); err != nil {
		return mapError(err)
	}
	if out.GetValue() != "PONG" {
		return fmt.Errorf("unexpected ping response %q", out.GetValue())
	}
	return nil
}

// Push sends es and returns how many the remote had not seen.
func (c *Client) Push(ctx context.Context, es []models.Entry) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.conn.Invoke(c.authorized(ctx), pushMethod, toList(es), out); err != nil {
		return 0, mapError(err)
	}
	return out.GetValue(), nil
}

// Pull fetches every remote entry, skipping and counting the ones that do
// not decode.
func (c *Client) Pull(ctx context.Context) ([]models.Entry, int, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(c.authorized(ctx), pullMethod, &emptypb.Empty{}, out); err != nil {
		return nil, 0, mapError(err)
	}

	var rejected int
	result := make([]models.Entry, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		e, err := fromValue(v, false)
		if err != nil {
			rejected++
			continue
		}
		result = append(result, e)
	}
	return result, rejected, nil
}

type SyncResult struct {
	Pushed   int64
	Pulled   int
	Rejected int
}

// Sync pushes all local entries, then pulls and merges all remote ones.
func (c *Client) Sync(ctx context.Context, local LocalStore) (SyncResult, error) {
	var res SyncResult

	all, err := local.SelectAll(ctx)
	if err != nil {
		return res, err
	}
	if res.Pushed, err = c.Push(ctx, all); err != nil {
		return res, err
	}

	remote, rejected, err := c.Pull(ctx)
	res.Rejected = rejected
	if err != nil {
		return res, err
	}
	res.Pulled, err = merge.MergeAll(ctx, local, remote)
	return res, err
}

func mapError(err error) error {
	if status.Code(err) == codes.Unauthenticated {
		return fmt.Errorf("%w: %s", common.ErrUnauthorized, status.Convert(err).Message())
	}
	return err
}
