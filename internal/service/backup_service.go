package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/pod-grading-api/internal/dto"
	"github.com/noah-isme/pod-grading-api/internal/state"
)

// ErrBackupDisabled indicates no upload target is configured.
var ErrBackupDisabled = errors.New("backup upload is not configured")

// BackupUploader stores a backup file and returns its public URL.
type BackupUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// BackupService serialises the snapshot for download or off-site upload.
type BackupService interface {
	Export() ([]byte, error)
	Upload(ctx context.Context) (dto.BackupResponse, error)
}

type backupService struct {
	store    *state.Store
	uploader BackupUploader
	now      func() time.Time
	logger   zerolog.Logger
}

// NewBackupService constructs the backup service. uploader may be nil.
func NewBackupService(store *state.Store, uploader BackupUploader, logger zerolog.Logger) BackupService {
	return &backupService{
		store:    store,
		uploader: uploader,
		now:      time.Now,
		logger:   logger.With().Str("component", "backup_service").Logger(),
	}
}

func (s *backupService) Export() ([]byte, error) {
	return json.MarshalIndent(s.store.State(), "", "  ")
}

func (s *backupService) Upload(ctx context.Context) (dto.BackupResponse, error) {
	if s.uploader == nil {
		return dto.BackupResponse{}, ErrBackupDisabled
	}

	snapshot := s.store.State()
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return dto.BackupResponse{}, err
	}

	uploadedAt := s.now().UTC()
	filename := fmt.Sprintf("pod-grading-r%d-%s.json", snapshot.Revision, uploadedAt.Format("20060102-150405"))
	url, err := s.uploader.Upload(ctx, filename, bytes.NewReader(payload))
	if err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Msg("backup upload failed")
		return dto.BackupResponse{}, fmt.Errorf("upload backup: %w", err)
	}

	s.logger.Info().Str("url", url).Int64("revision", snapshot.Revision).Msg("backup uploaded")
	return dto.BackupResponse{
		URL:        url,
		Filename:   filename,
		Revision:   snapshot.Revision,
		Bytes:      len(payload),
		UploadedAt: uploadedAt,
	}, nil
}
