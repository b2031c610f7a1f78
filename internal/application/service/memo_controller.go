package service

import (
	"context"
	"memocal/internal/application/dto"
	"memocal/internal/domain/entity"
	"time"
)

// MemoController mediates between the UI and the store and reminder scheduler
// for a single viewed date.
type MemoController interface {
	// ViewedDate returns the date whose memos are exposed. Until a date is
	// chosen it is today, and it moves forward at midnight.
	ViewedDate() time.Time
	// SetViewedDate pins the viewed date; live observers re-subscribe.
	// Choosing today returns to following today.
	SetViewedDate(date time.Time)
	// Location returns the zone dates are interpreted in.
	Location() *time.Location
	// ObserveMemos returns a live list of the viewed date's memos, closed when ctx ends.
	ObserveMemos(ctx context.Context) (<-chan []*entity.Memo, error)
	// ListMemos returns the viewed date's memos once.
	ListMemos(ctx context.Context) ([]*entity.Memo, error)
	// GetMemo returns a memo by ID or ErrMemoNotFound.
	GetMemo(ctx context.Context, id uint) (*entity.Memo, error)
	// AddMemo validates the request, stores a memo for the viewed date and evaluates its reminder.
	AddMemo(ctx context.Context, req dto.AddMemoRequest) (*dto.AddMemoResult, error)
	// DeleteMemo removes a memo and cancels its reminder.
	DeleteMemo(ctx context.Context, memo *entity.Memo) error
	// Close stops the write worker. Pending writes finish first.
	Close()
}
