package sqlite

import (
	"context"
	"errors"
	"fmt"
	"memocal/internal/domain/entity"
	"memocal/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type memoRepository struct {
	db *gorm.DB
}

// NewMemoRepository creates a new instance of MemoRepository.
func NewMemoRepository(db *gorm.DB) repository.MemoRepository {
	return &memoRepository{db: db}
}

// Insert creates a memo, or replaces the row that already has its ID.
func (r *memoRepository) Insert(ctx context.Context, memo *entity.Memo) (uint, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(memo).Error
	if err != nil {
		return 0, fmt.Errorf("🔴 ERROR: failed to insert memo %q: %w", memo.Title, err)
	}
	return memo.ID, nil
}

// FindByID retrieves a memo by its ID.
func (r *memoRepository) FindByID(ctx context.Context, id uint) (*entity.Memo, error) {
	var memo entity.Memo
	if err := r.db.WithContext(ctx).First(&memo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("🔴 ERROR: failed to find memo by id %d: %w", id, err)
	}
	return &memo, nil
}

// FindByDate retrieves the memos of one day, earliest time first.
func (r *memoRepository) FindByDate(ctx context.Context, date int64) ([]*entity.Memo, error) {
	memos := []*entity.Memo{}
	if err := r.db.WithContext(ctx).Where("date = ?", date).Order("time asc").Order("id asc").Find(&memos).Error; err != nil {
		return nil, fmt.Errorf("🔴 ERROR: failed to find memos for date %d: %w", date, err)
	}
	return memos, nil
}

// FindFrom retrieves the memos dated on or after date (used for rescheduling on startup).
func (r *memoRepository) FindFrom(ctx context.Context, date int64) ([]*entity.Memo, error) {
	memos := []*entity.Memo{}
	if err := r.db.WithContext(ctx).Where("date >= ?", date).Order("date asc").Order("time asc").Find(&memos).Error; err != nil {
		return nil, fmt.Errorf("🔴 ERROR: failed to find memos from date %d: %w", date, err)
	}
	return memos, nil
}

// Delete deletes a memo by its ID.
func (r *memoRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&entity.Memo{}, id).Error; err != nil {
		return fmt.Errorf("🔴 ERROR: failed to delete memo %d: %w", id, err)
	}
	return nil
}
