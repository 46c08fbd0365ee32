package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/domain"
)

// GistSyncService mirrors the journal backup to a remote gist as an
// alternate channel next to local file export.
type GistSyncService struct {
	backup *BackupService
	store  domain.GistStore
	logger *zap.Logger
}

func NewGistSyncService(backup *BackupService, store domain.GistStore, logger *zap.Logger) *GistSyncService {
	return &GistSyncService{backup: backup, store: store, logger: logger}
}

// Push exports the current journal and uploads it, returning the gist
// id holding the backup (newly created when gistID is empty).
func (s *GistSyncService) Push(ctx context.Context, token, gistID string) (string, error) {
	doc, err := s.backup.Export(ctx)
	if err != nil {
		return "", err
	}
	newID, err := s.store.Push(ctx, token, gistID, doc)
	if err != nil {
		return "", err
	}
	s.logger.Info("backup pushed to gist", zap.String("gist", newID), zap.Int("trades", len(doc.Trades)))
	return newID, nil
}

// Pull downloads the backup held in the gist and applies it as a full
// replace, same semantics as a local file import.
func (s *GistSyncService) Pull(ctx context.Context, token, gistID string) (*domain.BackupDocument, error) {
	doc, err := s.store.Pull(ctx, token, gistID)
	if err != nil {
		return nil, err
	}
	if doc.Trades == nil {
		return nil, domain.ErrBadBackup
	}
	if err := s.backup.Import(ctx, doc); err != nil {
		return nil, err
	}
	s.logger.Info("backup restored from gist", zap.String("gist", gistID), zap.Int("trades", len(doc.Trades)))
	return doc, nil
}
