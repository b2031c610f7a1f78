package service

import (
	"context"
	"memocal/internal/domain/entity"
	"time"
)

// MemoStore is the single gateway to persisted memos.
type MemoStore interface {
	// Insert stores a memo (insert-or-replace on ID) and returns its ID.
	Insert(ctx context.Context, memo *entity.Memo) (uint, error)
	// QueryByDate subscribes to the memos of date. The channel receives the
	// current list immediately and the full list again after every write that
	// touches date. It is closed when ctx ends.
	QueryByDate(ctx context.Context, date time.Time) (<-chan []*entity.Memo, error)
	// ListByDate returns the memos of date once.
	ListByDate(ctx context.Context, date time.Time) ([]*entity.Memo, error)
	// Delete removes a memo. Deleting a missing memo is not an error.
	Delete(ctx context.Context, memo *entity.Memo) error
	// GetByID returns the memo with id, or nil when absent.
	GetByID(ctx context.Context, id uint) (*entity.Memo, error)
	// Upcoming returns the memos dated on or after from.
	Upcoming(ctx context.Context, from time.Time) ([]*entity.Memo, error)
}
