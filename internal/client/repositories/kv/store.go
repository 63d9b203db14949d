// Package kv is the string-keyed durable byte store under the local data
// layer, plus a JSON layer with per-key locking for read-modify-write.
package kv

import "context"

// Store is a flat key-value store. Get of an absent key returns (nil, nil);
// Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Replacer is implemented by stores that can swap their whole content
// atomically.
type Replacer interface {
	ReplaceAll(ctx context.Context, pairs map[string][]byte) error
}

// Replace swaps the content of s for pairs, atomically when s supports it.
func Replace(ctx context.Context, s Store, pairs map[string][]byte) error {
	if r, ok := s.(Replacer); ok {
		return r.ReplaceAll(ctx, pairs)
	}
	return replaceSequential(ctx, s, pairs)
}

func replaceSequential(ctx context.Context, s Store, pairs map[string][]byte) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	for k, v := range pairs {
		if err := s.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys owned by the data layer services.
const (
	KeyEntries       = "entries"
	KeyPreferences   = "preferences_v1"
	KeyActiveSleep   = "active_sleep"
	KeyActiveBreast  = "active_breast"
	KeyLegacyBaby    = "baby_profile"
	KeyProfiles      = "baby_profiles"
	KeyActiveBabyID  = "active_baby_id"
	KeyWeights       = "weights"
	KeySyncEnabled   = "sync_enabled"
	KeySyncBabyID    = "baby_id"
	KeySyncProfileID = "sync_profile_id"
	KeySyncToken     = "sync_token"
	KeySyncVersion   = "sync_version"
)
