package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/babylog/internal/client/events"
	"github.com/dmitrijs2005/babylog/internal/client/repositories/kv"
	"github.com/dmitrijs2005/babylog/internal/common"
	"github.com/dmitrijs2005/babylog/internal/cryptox"
	"github.com/dmitrijs2005/babylog/internal/timex"
)

// BackupMagic prefixes every backup file.
var BackupMagic = []byte("BLBK1")

const backupFormatVersion = 1

type backupPayload struct {
	Version   int               `json:"version"`
	CreatedAt int64             `json:"createdAt"`
	Data      map[string][]byte `json:"data"`
}

// BackupService snapshots the whole key-value store into a passphrase
// protected blob and restores it.
type BackupService interface {
	Create(ctx context.Context, passphrase []byte) ([]byte, error)
	Restore(ctx context.Context, blob, passphrase []byte) (int, error)
}

type backupService struct {
	store kv.Store
	notifier
}

func NewBackupService(store kv.Store, bus events.Publisher, clock timex.Clock) BackupService {
	return &backupService{store: store, notifier: notifier{bus: bus, clock: clock}}
}

func (s *backupService) Create(ctx context.Context, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrInvalidPassphrase)
	}
	pairs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	plaintext, err := json.Marshal(backupPayload{Version: backupFormatVersion, CreatedAt: s.nowMs(), Data: pairs})
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	defer common.WipeByteArray(plaintext)

	blob, err := cryptox.Seal(BackupMagic, passphrase, plaintext)
	if err != nil {
		return nil, fmt.Errorf("seal backup: %w", err)
	}
	return blob, nil
}

// Restore replaces the store content with the backup. It returns the
// number of keys restored.
func (s *backupService) Restore(ctx context.Context, blob, passphrase []byte) (int, error) {
	plaintext, err := cryptox.Open(BackupMagic, passphrase, blob)
	switch {
	case errors.Is(err, cryptox.ErrDecrypt):
		return 0, common.ErrInvalidPassphrase
	case errors.Is(err, cryptox.ErrMalformed):
		return 0, fmt.Errorf("%w: %w", common.ErrInvalidBackup, err)
	case err != nil:
		return 0, err
	}
	defer common.WipeByteArray(plaintext)

	var payload backupPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrInvalidBackup, err)
	}
	if payload.Version != backupFormatVersion {
		return 0, fmt.Errorf("%w: unsupported version %d", common.ErrInvalidBackup, payload.Version)
	}

	if err := kv.Replace(ctx, s.store, payload.Data); err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}

	s.publish(events.TopicBackup)
	return len(payload.Data), nil
}
