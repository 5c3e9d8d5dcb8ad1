package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/pod-grading-api/internal/models"
)

// ErrSnapshotNotFound is returned when no document is stored under a slot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository stores serialized snapshots, one row per slot.
type SnapshotRepository interface {
	Get(ctx context.Context, slot string) (models.SnapshotDocument, error)
	Put(ctx context.Context, doc *models.SnapshotDocument) error
	Ping(ctx context.Context) error
}

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository constructs a snapshot repository on db. The same
// repository backs both the local SQLite store and the remote Postgres store.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) Get(ctx context.Context, slot string) (models.SnapshotDocument, error) {
	var doc models.SnapshotDocument
	err := r.db.WithContext(ctx).Where("slot = ?", slot).Take(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.SnapshotDocument{}, ErrSnapshotNotFound
	}
	return doc, err
}

func (r *snapshotRepository) Put(ctx context.Context, doc *models.SnapshotDocument) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"schema_version", "revision", "document", "updated_at"}),
	}).Create(doc).Error
}

func (r *snapshotRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
