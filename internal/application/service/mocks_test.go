package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"memocal/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

var taipei = time.FixedZone("CST", 8*60*60)

// fakeMemoRepository is an in-memory repository.MemoRepository.
type fakeMemoRepository struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]entity.Memo
	// failWrites makes Insert and Delete fail, simulating a storage error.
	failWrites bool
	inserts    int
}

func newFakeMemoRepository() *fakeMemoRepository {
	return &fakeMemoRepository{rows: make(map[uint]entity.Memo)}
}

var errDiskFull = errors.New("disk I/O error")

func (r *fakeMemoRepository) Insert(_ context.Context, memo *entity.Memo) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return 0, errDiskFull
	}
	r.inserts++
	if memo.ID == 0 {
		r.nextID++
		memo.ID = r.nextID
	} else if memo.ID > r.nextID {
		r.nextID = memo.ID
	}
	r.rows[memo.ID] = *memo
	return memo.ID, nil
}

func (r *fakeMemoRepository) FindByID(_ context.Context, id uint) (*entity.Memo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *fakeMemoRepository) find(match func(entity.Memo) bool) []*entity.Memo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*entity.Memo{}
	for _, m := range r.rows {
		if match(m) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *fakeMemoRepository) FindByDate(_ context.Context, date int64) ([]*entity.Memo, error) {
	return r.find(func(m entity.Memo) bool { return m.Date == date }), nil
}

func (r *fakeMemoRepository) FindFrom(_ context.Context, date int64) ([]*entity.Memo, error) {
	return r.find(func(m entity.Memo) bool { return m.Date >= date }), nil
}

func (r *fakeMemoRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites {
		return errDiskFull
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeMemoRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// MockAlarm is a mock implementation of the Alarm collaborator.
type MockAlarm struct {
	mock.Mock
	handler func(ctx context.Context, memoID uint, title string) error
}

func (m *MockAlarm) Schedule(ctx context.Context, memoID uint, title string, at time.Time) error {
	args := m.Called(ctx, memoID, title, at)
	return args.Error(0)
}

func (m *MockAlarm) Cancel(ctx context.Context, memoID uint) error {
	args := m.Called(ctx, memoID)
	return args.Error(0)
}

func (m *MockAlarm) SetDeliverHandler(handler func(ctx context.Context, memoID uint, title string) error) {
	m.handler = handler
}

// MockNotifier is a mock implementation of the Notifier collaborator.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) HasPermission(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockNotifier) RequestPermission(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockNotifier) Deliver(ctx context.Context, memoID uint, title string) error {
	args := m.Called(ctx, memoID, title)
	return args.Error(0)
}

func (m *MockNotifier) Dismiss(ctx context.Context, memoID uint) error {
	args := m.Called(ctx, memoID)
	return args.Error(0)
}
