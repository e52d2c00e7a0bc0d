package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"golinks/internal/model"
)

// GormStore is the production LinkStore backed by MySQL through gorm.
// The gorm.Config must have TranslateError enabled so duplicate-key
// violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ LinkStore = (*GormStore)(nil)

func (s *GormStore) TryCreate(ctx context.Context, link *model.Link) error {
	err := s.db.WithContext(ctx).Create(link).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCodeTaken
	}
	return err
}

func (s *GormStore) Get(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *GormStore) IncrementClicks(ctx context.Context, code string) error {
	res := s.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("code = ?", code).
		UpdateColumn("clicks", gorm.Expr("clicks + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Top(ctx context.Context, n int) ([]model.Link, error) {
	if n <= 0 {
		n = DefaultTopN
	}
	var links []model.Link
	err := s.db.WithContext(ctx).
		Order("clicks DESC, code ASC").
		Limit(n).
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}
