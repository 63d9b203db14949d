package client

import (
	"context"

	"github.com/dmitrijs2005/babylog/internal/syncpb"
)

// Client is the cloud sync collaborator as seen by the local data layer.
type Client interface {
	CreateProfile(ctx context.Context, name string, dateOfBirth int64) (babyID, accessToken string, err error)
	PushEntries(ctx context.Context, babyID string, entries []syncpb.Entry) (accepted int, version int64, err error)
	PullEntries(ctx context.Context, babyID string, sinceVersion int64) ([]syncpb.Entry, int64, error)
	Watch(ctx context.Context, babyID string, sinceVersion int64, fn func(syncpb.WatchEvent) error) error
	PhotoUploadURL(ctx context.Context, babyID string) (key, url string, err error)
	UploadPhoto(ctx context.Context, url, contentType string, data []byte) error
	SetAccessToken(token string)
	Ping(ctx context.Context) error
	Close() error
}
