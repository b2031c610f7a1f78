package service

import (
	"context"
	"fmt"
	"memocal/internal/domain/entity"
	"memocal/internal/domain/repository"
	"memocal/internal/pkg/dateutil"
	appErrors "memocal/internal/pkg/errors"
	"memocal/internal/pkg/logger"
	"sync"
	"time"
)

type subscription struct {
	ch chan []*entity.Memo
}

type memoStore struct {
	repo repository.MemoRepository
	log  logger.Logger

	// writeMu serialises a write with the re-emission that follows it.
	writeMu sync.Mutex
	// subsMu guards subs and every send to or close of a subscription channel.
	subsMu sync.Mutex
	subs   map[int64]map[*subscription]struct{}
}

// NewMemoStore creates a MemoStore owning repo.
func NewMemoStore(repo repository.MemoRepository, log logger.Logger) MemoStore {
	return &memoStore{
		repo: repo,
		log:  log,
		subs: make(map[int64]map[*subscription]struct{}),
	}
}

// Insert stores the memo and refreshes the subscribers of every affected date.
func (s *memoStore) Insert(ctx context.Context, memo *entity.Memo) (uint, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	affected := []int64{memo.Date}
	if memo.ID != 0 {
		previous, err := s.repo.FindByID(ctx, memo.ID)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
		}
		if previous != nil && previous.Date != memo.Date {
			affected = append(affected, previous.Date)
		}
	}

	id, err := s.repo.Insert(ctx, memo)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to insert memo %q", memo.Title), err)
		return 0, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	s.log.Debug(fmt.Sprintf("Stored memo %d at %s", id, memo.Time))

	for _, date := range affected {
		s.publish(ctx, date)
	}
	return id, nil
}

// Delete removes the memo and refreshes the subscribers of its date.
func (s *memoStore) Delete(ctx context.Context, memo *entity.Memo) error {
	if memo == nil || memo.ID == 0 {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stored, err := s.repo.FindByID(ctx, memo.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	if stored == nil {
		s.log.Debug(fmt.Sprintf("Memo %d already gone, nothing to delete", memo.ID))
		return nil
	}
	if err := s.repo.Delete(ctx, memo.ID); err != nil {
		s.log.Error(fmt.Sprintf("Failed to delete memo %d", memo.ID), err)
		return fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	s.log.Debug(fmt.Sprintf("Deleted memo %d", memo.ID))

	s.publish(ctx, stored.Date)
	return nil
}

// GetByID returns the memo with id, or nil when absent.
func (s *memoStore) GetByID(ctx context.Context, id uint) (*entity.Memo, error) {
	memo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	return memo, nil
}

// ListByDate returns the memos of date ordered by time.
func (s *memoStore) ListByDate(ctx context.Context, date time.Time) ([]*entity.Memo, error) {
	memos, err := s.repo.FindByDate(ctx, dateutil.ToEpochStartOfDay(date))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	return memos, nil
}

// Upcoming returns the memos dated on or after from.
func (s *memoStore) Upcoming(ctx context.Context, from time.Time) ([]*entity.Memo, error) {
	memos, err := s.repo.FindFrom(ctx, dateutil.ToEpochStartOfDay(from))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	return memos, nil
}

// QueryByDate opens a live subscription on date.
func (s *memoStore) QueryByDate(ctx context.Context, date time.Time) (<-chan []*entity.Memo, error) {
	key := dateutil.ToEpochStartOfDay(date)
	sub := &subscription{ch: make(chan []*entity.Memo, 1)}

	// Holding writeMu keeps a write from slipping between the snapshot and registration.
	s.writeMu.Lock()
	memos, err := s.repo.FindByDate(ctx, key)
	if err != nil {
		s.writeMu.Unlock()
		return nil, fmt.Errorf("%w: %v", appErrors.ErrDatabaseOperation, err)
	}
	s.subsMu.Lock()
	if s.subs[key] == nil {
		s.subs[key] = make(map[*subscription]struct{})
	}
	s.subs[key][sub] = struct{}{}
	sub.ch <- cloneMemos(memos)
	s.subsMu.Unlock()
	s.writeMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs[key], sub)
		if len(s.subs[key]) == 0 {
			delete(s.subs, key)
		}
		close(sub.ch)
	}()
	return sub.ch, nil
}

// publish pushes the current list of date to its subscribers. A subscriber
// that has not read the previous list gets it replaced by the newer one.
func (s *memoStore) publish(ctx context.Context, date int64) {
	s.subsMu.Lock()
	n := len(s.subs[date])
	s.subsMu.Unlock()
	if n == 0 {
		return
	}

	memos, err := s.repo.FindByDate(context.WithoutCancel(ctx), date)
	if err != nil {
		// The write itself succeeded; subscribers catch up on the next one.
		s.log.Error(fmt.Sprintf("Failed to refresh memos for date %d", date), err)
		return
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for sub := range s.subs[date] {
		snapshot := cloneMemos(memos)
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snapshot
	}
}

// cloneMemos gives each subscriber its own copies.
func cloneMemos(memos []*entity.Memo) []*entity.Memo {
	out := make([]*entity.Memo, len(memos))
	for i, m := range memos {
		c := *m
		out[i] = &c
	}
	return out
}
