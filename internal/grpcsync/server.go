package grpcsync

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"

	"github.com/dmitrijs2005/wlog/internal/common"
	"github.com/dmitrijs2005/wlog/internal/logging"
	"github.com/dmitrijs2005/wlog/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type EntryService interface {
	All(ctx context.Context) ([]models.Entry, error)
	Import(ctx context.Context, e models.Entry) (bool, error)
}

type Server struct {
	address string
	secret  string
	svc     EntryService
	logger  logging.Logger
}

func NewServer(a string, l logging.Logger, svc EntryService, secret string) *Server {
	return &Server{
		address: a,
		secret:  secret,
		svc:     svc,
		logger:  l.With("module", "grpc_server"),
	}
}

// GRPCServer builds a grpc.Server with the sync service and its auth
// interceptor registered.
func (s *Server) GRPCServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.authInterceptor))
	RegisterSyncServiceServer(srv, s)
	return srv
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", common.ErrBindFailure, s.address, err)
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.GRPCServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// ErrServerStopped: ctx was already done before Serve started
	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) authInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.FullMethod == pingMethod {
		return handler(ctx, req)
	}

	var got string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			got = values[0]
		}
	}
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
		return nil, status.Error(codes.Unauthenticated, common.ErrUnauthorized.Error())
	}

	return handler(ctx, req)
}

func (s *Server) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return wrapperspb.String("PONG"), nil
}

// Push merges every entry of the list and returns how many were new.
// Elements that do not decode are skipped.
func (s *Server) Push(ctx context.Context, in *structpb.ListValue) (*wrapperspb.Int64Value, error) {
	var inserted int64
	for _, v := range in.GetValues() {
		e, err := fromValue(v, true)
		if err != nil {
			s.logger.Warn(ctx, "rejected entry", "error", err)
			continue
		}

		ok, err := s.svc.Import(ctx, e)
		if err != nil {
			s.logger.Error(ctx, "push failed", "error", err)
			return nil, status.Error(codes.Internal, err.Error())
		}
		if ok {
			inserted++
		}
	}
	return wrapperspb.Int64(inserted), nil
}

func (s *Server) Pull(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	es, err := s.svc.All(ctx)
	if err != nil {
		s.logger.Error(ctx, "pull failed", "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toList(es), nil
}
