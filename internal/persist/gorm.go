package persist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Bernardxu123/unicom-calc/internal/config"
	"github.com/Bernardxu123/unicom-calc/internal/database"
	"github.com/Bernardxu123/unicom-calc/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend keeps blobs in the kv_entries table.
type GormBackend struct {
	DB *gorm.DB
}

// OpenLocal opens (and creates) the sqlite state file at path.
func OpenLocal(path string) (*GormBackend, error) {
	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", Path: path})
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrateClient(db); err != nil {
		return nil, err
	}
	return &GormBackend{DB: db}, nil
}

func (b *GormBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var e models.KVEntry
	if err := b.DB.WithContext(ctx).First(&e, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return e.Value, nil
}

func (b *GormBackend) Put(ctx context.Context, key string, value []byte) error {
	e := models.KVEntry{Key: key, Value: value}
	err := b.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Close releases the state file.
func (b *GormBackend) Close() error {
	return database.Close(b.DB)
}

// MemoryBackend is an in-process Backend, used by tests and dry runs.
type MemoryBackend struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: map[string][]byte{}}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (b *MemoryBackend) Put(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.m[key] = append([]byte(nil), value...)
	return nil
}
