package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/syncpb"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

/*************
 * Fake sync API
 *************/

type fakeSync struct {
	lastCreate *structpb.Struct
	lastPush   *structpb.Struct
	lastPull   *structpb.Struct
	lastPhoto  *structpb.Struct
	lastWatch  *structpb.Struct

	createResp any
	createErr  error
	pushResp   any
	pushErr    error
	pullResp   any
	pullErr    error
	photoResp  any
	photoErr   error
	pingResp   any
	pingErr    error

	watchEvents []syncpb.WatchEvent
	watchErr    error
	watchEndErr error
}

func encodeOrNil(v any) *structpb.Struct {
	if v == nil {
		return nil
	}
	s, err := syncpb.Encode(v)
	if err != nil {
		panic(err)
	}
	return s
}

func (f *fakeSync) CreateProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastCreate = in
	return encodeOrNil(f.createResp), f.createErr
}
func (f *fakeSync) PushEntries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastPush = in
	return encodeOrNil(f.pushResp), f.pushErr
}
func (f *fakeSync) PullEntries(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastPull = in
	return encodeOrNil(f.pullResp), f.pullErr
}
func (f *fakeSync) PhotoUploadURL(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	f.lastPhoto = in
	return encodeOrNil(f.photoResp), f.photoErr
}
func (f *fakeSync) Ping(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return encodeOrNil(f.pingResp), f.pingErr
}
func (f *fakeSync) Watch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	f.lastWatch = in
	if f.watchErr != nil {
		return nil, f.watchErr
	}
	return &fakeStream{events: f.watchEvents, endErr: f.watchEndErr}, nil
}

type fakeStream struct {
	grpc.ClientStream
	events []syncpb.WatchEvent
	endErr error
}

func (s *fakeStream) Recv() (*structpb.Struct, error) {
	if len(s.events) == 0 {
		if s.endErr != nil {
			return nil, s.endErr
		}
		return nil, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return encodeOrNil(ev), nil
}

/*************
 * Interceptor tests
 *************/

func TestInterceptor_AttachesAccessToken(t *testing.T) {
	c := &GRPCClient{}
	c.SetAccessToken("A1")

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		toks := md.Get(common.AccessTokenHeaderName)
		require.Equal(t, []string{"A1"}, toks)
		return nil
	}

	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_ReplacesExistingToken(t *testing.T) {
	c := &GRPCClient{}
	c.SetAccessToken("new")
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old")

	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_NoTokenNoHeader(t *testing.T) {
	c := &GRPCClient{}
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Empty(t, md.Get(common.AccessTokenHeaderName))
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestInterceptor_AppliesTimeout(t *testing.T) {
	c := &GRPCClient{timeout: time.Second}
	invoker := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		_, ok := ctx.Deadline()
		require.True(t, ok)
		return nil
	}
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker))
}

func TestStreamInterceptor_AttachesAccessToken(t *testing.T) {
	c := &GRPCClient{}
	c.SetAccessToken("S1")
	streamer := func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		md, _ := metadata.FromOutgoingContext(ctx)
		require.Equal(t, []string{"S1"}, md.Get(common.AccessTokenHeaderName))
		return nil, nil
	}
	_, err := c.streamAccessTokenInterceptor(context.Background(), &grpc.StreamDesc{}, nil, "/svc/Watch", streamer)
	require.NoError(t, err)
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.Unauthenticated, "x")))
	require.Equal(t, ErrUnauthorized, c.mapError(status.Error(codes.PermissionDenied, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.Unavailable, "x")))
	require.Equal(t, ErrUnavailable, c.mapError(status.Error(codes.DeadlineExceeded, "x")))
	require.ErrorContains(t, c.mapError(errors.New("plain")), "rpc error:")
	require.NoError(t, c.mapError(nil))
}

/*************
 * RPC method tests
 *************/

func TestCreateProfile_StoresToken(t *testing.T) {
	f := &fakeSync{createResp: syncpb.CreateProfileResponse{BabyID: "r1", AccessToken: "T"}}
	c := &GRPCClient{client: f}

	id, tok, err := c.CreateProfile(context.Background(), "Emma", 1700000000000)
	require.NoError(t, err)
	require.Equal(t, "r1", id)
	require.Equal(t, "T", tok)
	require.Equal(t, "T", c.token())

	var req syncpb.CreateProfileRequest
	require.NoError(t, syncpb.Decode(f.lastCreate, &req))
	require.Equal(t, syncpb.CreateProfileRequest{Name: "Emma", DateOfBirth: 1700000000000}, req)
}

func TestCreateProfile_IncompleteResponse(t *testing.T) {
	f := &fakeSync{createResp: syncpb.CreateProfileResponse{BabyID: "r1"}}
	c := &GRPCClient{client: f}

	_, _, err := c.CreateProfile(context.Background(), "Emma", 1)
	require.ErrorContains(t, err, "incomplete")
}

func TestPushEntries(t *testing.T) {
	f := &fakeSync{pushResp: syncpb.PushEntriesResponse{Accepted: 1, Version: 7}}
	c := &GRPCClient{client: f}

	n, v, err := c.PushEntries(context.Background(), "r1", []syncpb.Entry{
		{ID: "diaper_1_aaaaaaaa", Payload: json.RawMessage(`{"type":"diaper"}`)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int64(7), v)

	var req syncpb.PushEntriesRequest
	require.NoError(t, syncpb.Decode(f.lastPush, &req))
	require.Equal(t, "r1", req.BabyID)
	require.Len(t, req.Entries, 1)
}

func TestPullEntries_MapsError(t *testing.T) {
	f := &fakeSync{pullErr: status.Error(codes.PermissionDenied, "other baby")}
	c := &GRPCClient{client: f}

	_, _, err := c.PullEntries(context.Background(), "r1", 0)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPhotoUploadURL(t *testing.T) {
	f := &fakeSync{photoResp: syncpb.PhotoUploadURLResponse{Key: "photos/r1/x.jpg", URL: "https://s3/x"}}
	c := &GRPCClient{client: f}

	key, url, err := c.PhotoUploadURL(context.Background(), "r1")
	require.NoError(t, err)
	require.Equal(t, "photos/r1/x.jpg", key)
	require.Equal(t, "https://s3/x", url)
}

func TestPing(t *testing.T) {
	c := &GRPCClient{client: &fakeSync{pingResp: syncpb.PingResponse{Status: "OK"}}}
	require.NoError(t, c.Ping(context.Background()))

	c = &GRPCClient{client: &fakeSync{pingResp: syncpb.PingResponse{Status: "DEGRADED"}}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	c = &GRPCClient{client: &fakeSync{pingErr: status.Error(codes.Unavailable, "down")}}
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestWatch_DeliversEventsUntilEOF(t *testing.T) {
	f := &fakeSync{watchEvents: []syncpb.WatchEvent{
		{Version: 1, Entries: []syncpb.Entry{{ID: "a", Payload: json.RawMessage(`{}`)}}},
		{Version: 2},
	}}
	c := &GRPCClient{client: f}

	var versions []int64
	err := c.Watch(context.Background(), "r1", 0, func(ev syncpb.WatchEvent) error {
		versions = append(versions, ev.Version)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, versions)

	var req syncpb.WatchRequest
	require.NoError(t, syncpb.Decode(f.lastWatch, &req))
	require.Equal(t, "r1", req.BabyID)
}

func TestWatch_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	f := &fakeSync{watchEvents: []syncpb.WatchEvent{{Version: 1}, {Version: 2}}}
	c := &GRPCClient{client: f}

	calls := 0
	err := c.Watch(context.Background(), "r1", 0, func(syncpb.WatchEvent) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 1, calls)
}

func TestWatch_MapsStreamErrors(t *testing.T) {
	c := &GRPCClient{client: &fakeSync{watchErr: status.Error(codes.Unauthenticated, "no token")}}
	err := c.Watch(context.Background(), "r1", 0, func(syncpb.WatchEvent) error { return nil })
	require.ErrorIs(t, err, ErrUnauthorized)

	c = &GRPCClient{client: &fakeSync{watchEndErr: status.Error(codes.Unavailable, "gone")}}
	err = c.Watch(context.Background(), "r1", 0, func(syncpb.WatchEvent) error { return nil })
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestNewGRPCClient_Close(t *testing.T) {
	c, err := NewGRPCClient("127.0.0.1:0", time.Second)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, (&GRPCClient{}).Close())
}
