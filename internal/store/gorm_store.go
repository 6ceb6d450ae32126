package store

import (
	"errors"
	"fmt"

	"github.com/lshigami/quizx/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormProvider struct {
	db *gorm.DB
}

// NewGormProvider stores entries in the store_entries table.
func NewGormProvider(db *gorm.DB) Provider {
	return &gormProvider{db: db}
}

func (p *gormProvider) Open(namespace string) Store {
	return &gormStore{db: p.db, namespace: namespace}
}

type gormStore struct {
	db        *gorm.DB
	namespace string
}

func (s *gormStore) Get(key string) ([]byte, error) {
	var entry model.StoreEntry
	err := s.db.Where(&model.StoreEntry{Namespace: s.namespace, Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *gormStore) Set(key string, value []byte) error {
	entry := model.StoreEntry{Namespace: s.namespace, Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *gormStore) Remove(key string) error {
	err := s.db.Where(&model.StoreEntry{Namespace: s.namespace, Key: key}).Delete(&model.StoreEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
