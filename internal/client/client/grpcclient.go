package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/netx"
	"github.com/dmitrijs2005/babylog/internal/syncpb"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// syncAPI is the generated-style client surface; tests substitute a fake.
type syncAPI interface {
	CreateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PushEntries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PullEntries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PhotoUploadURL(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Ping(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error)
	Watch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      syncAPI

	mu          sync.RWMutex
	accessToken string
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults (tests pass a bufconn dialer).
func NewGRPCClient(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpointURL, err)
	}
	c.conn = conn
	c.client = syncpb.NewSyncServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func withAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(withAccessToken(ctx, s.token()), method, req, reply, cc, opts...)
}

func (s *GRPCClient) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	return streamer(withAccessToken(ctx, s.token()), desc, cc, method, opts...)
}

func (s *GRPCClient) call(ctx context.Context, fn func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error), req, resp any) error {
	in, err := syncpb.Encode(req)
	if err != nil {
		return err
	}
	out, err := fn(ctx, in)
	if err != nil {
		return s.mapError(err)
	}
	return syncpb.Decode(out, resp)
}

func (s *GRPCClient) CreateProfile(ctx context.Context, name string, dateOfBirth int64) (string, string, error) {
	var resp syncpb.CreateProfileResponse
	err := s.call(ctx, s.client.CreateProfile, syncpb.CreateProfileRequest{Name: name, DateOfBirth: dateOfBirth}, &resp)
	if err != nil {
		return "", "", err
	}
	if resp.BabyID == "" || resp.AccessToken == "" {
		return "", "", fmt.Errorf("rpc error: incomplete CreateProfile response")
	}
	s.SetAccessToken(resp.AccessToken)
	return resp.BabyID, resp.AccessToken, nil
}

func (s *GRPCClient) PushEntries(ctx context.Context, babyID string, entries []syncpb.Entry) (int, int64, error) {
	var resp syncpb.PushEntriesResponse
	if err := s.call(ctx, s.client.PushEntries, syncpb.PushEntriesRequest{BabyID: babyID, Entries: entries}, &resp); err != nil {
		return 0, 0, err
	}
	return resp.Accepted, resp.Version, nil
}

func (s *GRPCClient) PullEntries(ctx context.Context, babyID string, sinceVersion int64) ([]syncpb.Entry, int64, error) {
	var resp syncpb.PullEntriesResponse
	if err := s.call(ctx, s.client.PullEntries, syncpb.PullEntriesRequest{BabyID: babyID, SinceVersion: sinceVersion}, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Entries, resp.Version, nil
}

func (s *GRPCClient) PhotoUploadURL(ctx context.Context, babyID string) (string, string, error) {
	var resp syncpb.PhotoUploadURLResponse
	if err := s.call(ctx, s.client.PhotoUploadURL, syncpb.PhotoUploadURLRequest{BabyID: babyID}, &resp); err != nil {
		return "", "", err
	}
	return resp.Key, resp.URL, nil
}

func (s *GRPCClient) UploadPhoto(ctx context.Context, url, contentType string, data []byte) error {
	return netx.UploadPresigned(ctx, url, contentType, data)
}

// Watch delivers server pushes to fn until ctx ends, the server closes the
// stream, or fn returns an error.
func (s *GRPCClient) Watch(ctx context.Context, babyID string, sinceVersion int64, fn func(syncpb.WatchEvent) error) error {
	in, err := syncpb.Encode(syncpb.WatchRequest{BabyID: babyID, SinceVersion: sinceVersion})
	if err != nil {
		return err
	}
	stream, err := s.client.Watch(ctx, in)
	if err != nil {
		return s.mapError(err)
	}

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return s.mapError(err)
		}

		var ev syncpb.WatchEvent
		if err := syncpb.Decode(msg, &ev); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	out, err := s.client.Ping(ctx)
	if err != nil {
		return s.mapError(err)
	}
	var resp syncpb.PingResponse
	if err := syncpb.Decode(out, &resp); err != nil {
		return err
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
