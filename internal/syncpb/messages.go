package syncpb

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Entry is a care event as stored by the sync server. Payload is the
// client's JSON encoding of the entry; the server never interprets it
// beyond the id.
type Entry struct {
	ID      string          `json:"id"`
	Version int64           `json:"version,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

type CreateProfileRequest struct {
	Name        string `json:"name"`
	DateOfBirth int64  `json:"dateOfBirth"`
}

type CreateProfileResponse struct {
	BabyID      string `json:"babyId"`
	AccessToken string `json:"accessToken"`
}

type PushEntriesRequest struct {
	BabyID  string  `json:"babyId"`
	Entries []Entry `json:"entries"`
}

type PushEntriesResponse struct {
	Accepted int   `json:"accepted"`
	Version  int64 `json:"version"`
}

type PullEntriesRequest struct {
	BabyID       string `json:"babyId"`
	SinceVersion int64  `json:"sinceVersion"`
}

type PullEntriesResponse struct {
	Entries []Entry `json:"entries"`
	Version int64   `json:"version"`
}

type PhotoUploadURLRequest struct {
	BabyID string `json:"babyId"`
}

type PhotoUploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type PingResponse struct {
	Status string `json:"status"`
}

type WatchRequest struct {
	BabyID       string `json:"babyId"`
	SinceVersion int64  `json:"sinceVersion"`
}

// WatchEvent is one server push on the Watch stream.
type WatchEvent struct {
	Entries []Entry `json:"entries"`
	Version int64   `json:"version"`
}

// Encode converts v into a Struct envelope through its JSON form.
// Numbers travel as doubles, which is exact for millisecond timestamps and
// version counters.
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return s, nil
}

// Decode fills v from a Struct envelope. A nil envelope decodes as {}.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}
