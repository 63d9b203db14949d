package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/server/broker"
	"github.com/dmitrijs2005/babylog/internal/server/models"
	"github.com/dmitrijs2005/babylog/internal/server/services"
	"github.com/dmitrijs2005/babylog/internal/syncpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStatus maps service errors onto gRPC codes. Unknown errors are logged
// and hidden behind codes.Internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidEntry),
		errors.Is(err, common.ErrInvalidProfile),
		errors.Is(err, services.ErrInvalidBabyID),
		errors.Is(err, services.ErrTooManyEntries):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return status.Error(codes.NotFound, "profile not found")
	case errors.Is(err, common.ErrEntryConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, services.ErrPhotosDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, services.ErrSlowSubscriber):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

// authorize checks that the request targets the baby the token was issued for.
func authorize(ctx context.Context, babyID string) error {
	tokenBaby, ok := babyIDFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing token")
	}
	if tokenBaby != babyID {
		return status.Error(codes.PermissionDenied, "token does not grant access to this profile")
	}
	return nil
}

func decode(in *structpb.Struct, v any) error {
	if err := syncpb.Decode(in, v); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	out, err := syncpb.Encode(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func toWire(entries []*models.Entry) []syncpb.Entry {
	out := make([]syncpb.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, syncpb.Entry{ID: e.ID, Version: e.Version, Payload: e.Payload})
	}
	return out
}

func (s *GRPCServer) CreateProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req syncpb.CreateProfileRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}

	id, token, err := s.sync.CreateProfile(ctx, req.Name, req.DateOfBirth)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Profile registered", "baby_id", id)
	return encode(syncpb.CreateProfileResponse{BabyID: id, AccessToken: token})
}

func (s *GRPCServer) PushEntries(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req syncpb.PushEntriesRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := authorize(ctx, req.BabyID); err != nil {
		return nil, err
	}

	entries := make([]*models.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, &models.Entry{ID: e.ID, Payload: e.Payload})
	}

	accepted, version, err := s.sync.Push(ctx, req.BabyID, entries)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(syncpb.PushEntriesResponse{Accepted: accepted, Version: version})
}

func (s *GRPCServer) PullEntries(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req syncpb.PullEntriesRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := authorize(ctx, req.BabyID); err != nil {
		return nil, err
	}

	entries, version, err := s.sync.Pull(ctx, req.BabyID, req.SinceVersion)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(syncpb.PullEntriesResponse{Entries: toWire(entries), Version: version})
}

func (s *GRPCServer) PhotoUploadURL(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req syncpb.PhotoUploadURLRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := authorize(ctx, req.BabyID); err != nil {
		return nil, err
	}

	key, url, err := s.sync.PhotoUploadURL(ctx, req.BabyID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return encode(syncpb.PhotoUploadURLResponse{Key: key, URL: url})
}

func (s *GRPCServer) Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return encode(syncpb.PingResponse{Status: "OK"})
}

func (s *GRPCServer) Watch(in *structpb.Struct, stream syncpb.WatchStream) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()
	if s.watchCtx != nil {
		defer context.AfterFunc(s.watchCtx, cancel)()
	}

	var req syncpb.WatchRequest
	if err := decode(in, &req); err != nil {
		return err
	}
	if err := authorize(ctx, req.BabyID); err != nil {
		return err
	}

	s.logger.Info(ctx, "Watch opened", "baby_id", req.BabyID, "since", req.SinceVersion)
	err := s.sync.Watch(ctx, req.BabyID, req.SinceVersion, func(ev broker.Event) error {
		out, err := encode(syncpb.WatchEvent{Entries: toWire(ev.Entries), Version: ev.Version})
		if err != nil {
			return err
		}
		return stream.Send(out)
	})
	s.logger.Info(ctx, "Watch closed", "baby_id", req.BabyID)
	if s.watchCtx != nil && s.watchCtx.Err() != nil {
		return status.Error(codes.Unavailable, "server shutting down")
	}
	if err != nil {
		return s.toStatus(ctx, err)
	}
	return nil
}
