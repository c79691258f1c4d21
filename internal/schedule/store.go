package schedule

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrItemNotFound indicates a schedule item id that does not exist.
var ErrItemNotFound = errors.New("schedule: item not found")

// Store exposes the record-store operations for schedule items over GORM.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a database handle.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("schedule: database handle is required")
	}
	return &Store{db: db}, nil
}

// ListByTag returns every item carrying the provenance tag, oldest start first.
func (s *Store) ListByTag(ctx context.Context, tag SourceTag) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Where("source = ? AND source_ref = ?", tag.Source, tag.SourceRef).
		Order("starts_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListForShow returns all of a show's items ordered by start time.
func (s *Store) ListForShow(ctx context.Context, showID string) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Where("show_id = ?", showID).
		Order("starts_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteByID removes a single item. Missing rows are reported as ErrItemNotFound.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Item{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return nil
}

// Insert persists one item.
func (s *Store) Insert(ctx context.Context, item *Item) error {
	return s.db.WithContext(ctx).Create(item).Error
}

// InsertMany persists a batch of items in one statement.
func (s *Store) InsertMany(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&items).Error
}
