package repository

import (
	"context"
	"memocal/internal/domain/entity"
)

// MemoRepository defines the interface for memo data operations.
type MemoRepository interface {
	// Insert stores a memo, replacing any row with the same ID, and returns its ID.
	Insert(ctx context.Context, memo *entity.Memo) (uint, error)
	// FindByID retrieves a memo by its ID. Returns nil, nil when absent.
	FindByID(ctx context.Context, id uint) (*entity.Memo, error)
	// FindByDate retrieves the memos of one day ordered by time.
	FindByDate(ctx context.Context, date int64) ([]*entity.Memo, error)
	// FindFrom retrieves the memos dated on or after date, ordered by date and time.
	FindFrom(ctx context.Context, date int64) ([]*entity.Memo, error)
	// Delete deletes a memo by its ID. Deleting a missing memo is not an error.
	Delete(ctx context.Context, id uint) error
}
