package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"memocal/internal/application/dto"
	"memocal/internal/domain/constant"
	"memocal/internal/domain/entity"
	appErrors "memocal/internal/pkg/errors"
	"memocal/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	*reminderFixture
	ctrl MemoController
}

func newControllerFixture(t *testing.T) *controllerFixture {
	t.Helper()
	rf := newReminderFixture(t)
	ctrl := NewMemoController(rf.store, rf.rs, rf.clock, logger.Nop())
	t.Cleanup(ctrl.Close)
	return &controllerFixture{reminderFixture: rf, ctrl: ctrl}
}

func strPtr(s string) *string { return &s }

func TestViewedDateStartsToday(t *testing.T) {
	f := newControllerFixture(t)

	want := time.Date(2025, time.June, 20, 0, 0, 0, 0, taipei)
	assert.True(t, f.ctrl.ViewedDate().Equal(want))
	assert.Equal(t, taipei, f.ctrl.Location())
}

func TestSetViewedDateTruncatesToDay(t *testing.T) {
	f := newControllerFixture(t)

	f.ctrl.SetViewedDate(time.Date(2025, time.July, 1, 17, 45, 0, 0, taipei))
	assert.True(t, f.ctrl.ViewedDate().Equal(time.Date(2025, time.July, 1, 0, 0, 0, 0, taipei)))
}

func TestViewedDateFollowsMidnight(t *testing.T) {
	f := newControllerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tomorrow := now.AddDate(0, 0, 1)
	_, err := f.store.Insert(ctx, memoOn(tomorrow, "11:00", "tomorrow"))
	require.NoError(t, err)

	ch, err := f.ctrl.ObserveMemos(ctx)
	require.NoError(t, err)
	assert.Empty(t, next(t, ch))

	f.clock.Add(16 * time.Hour) // 2025-06-21 02:00
	assert.Equal(t, []string{"tomorrow"}, titles(next(t, ch)))
	assert.True(t, f.ctrl.ViewedDate().Equal(time.Date(2025, time.June, 21, 0, 0, 0, 0, taipei)))

	f.alarm.On("Schedule", mock.Anything, mock.Anything, "Standup", mock.MatchedBy(func(at time.Time) bool {
		return at.Equal(time.Date(2025, time.June, 21, 9, 0, 0, 0, taipei))
	})).Return(nil)
	result, err := f.ctrl.AddMemo(ctx, dto.AddMemoRequest{Time: "09:00", Title: "Standup"})
	require.NoError(t, err)
	assert.Equal(t, constant.ReminderScheduled, result.Reminder)
	assert.Equal(t, []string{"Standup", "tomorrow"}, titles(next(t, ch)))
}

func TestPinnedDateStaysAfterMidnight(t *testing.T) {
	f := newControllerFixture(t)
	pinned := time.Date(2025, time.July, 1, 0, 0, 0, 0, taipei)

	f.ctrl.SetViewedDate(pinned)
	f.clock.Add(16 * time.Hour)
	assert.True(t, f.ctrl.ViewedDate().Equal(pinned))

	// Choosing today again follows the clock.
	f.ctrl.SetViewedDate(f.clock.Now())
	f.clock.Add(24 * time.Hour)
	assert.True(t, f.ctrl.ViewedDate().Equal(time.Date(2025, time.June, 22, 0, 0, 0, 0, taipei)))
}

func TestAddMemoSchedulesReminder(t *testing.T) {
	f := newControllerFixture(t)
	want := time.Date(2025, time.June, 20, 14, 5, 0, 0, taipei)
	f.alarm.On("Schedule", mock.Anything, mock.Anything, "Dentist", mock.MatchedBy(func(at time.Time) bool {
		return at.Equal(want)
	})).Return(nil)

	result, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "14:5", Title: "  Dentist "})
	require.NoError(t, err)
	assert.Equal(t, constant.ReminderScheduled, result.Reminder)
	assert.NoError(t, result.Warning)
	assert.NotZero(t, result.Memo.ID)
	assert.Equal(t, "14:05", result.Memo.Time)
	assert.Equal(t, "Dentist", result.Memo.Title)
	f.alarm.AssertExpectations(t)

	memos, err := f.ctrl.ListMemos(context.Background())
	require.NoError(t, err)
	require.Len(t, memos, 1)
	assert.Equal(t, result.Memo.ID, memos[0].ID)
}

func TestAddMemoRejectsInvalidInput(t *testing.T) {
	f := newControllerFixture(t)

	cases := map[string]struct {
		req  dto.AddMemoRequest
		want []error
	}{
		"blank title":       {dto.AddMemoRequest{Time: "12:00", Title: "   "}, []error{appErrors.ErrBlankTitle}},
		"empty time":        {dto.AddMemoRequest{Time: "", Title: "Lunch"}, []error{appErrors.ErrInvalidTime}},
		"out of range time": {dto.AddMemoRequest{Time: "24:00", Title: "Lunch"}, []error{appErrors.ErrInvalidTime}},
		"time in the past":  {dto.AddMemoRequest{Time: "09:30", Title: "Standup"}, []error{appErrors.ErrTimeInPast}},
		"current minute":    {dto.AddMemoRequest{Time: "10:00", Title: "Standup"}, []error{appErrors.ErrTimeInPast}},
		"both fields":       {dto.AddMemoRequest{Time: "x", Title: ""}, []error{appErrors.ErrBlankTitle, appErrors.ErrInvalidTime}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := f.ctrl.AddMemo(context.Background(), tc.req)
			assert.Nil(t, result)
			var verr appErrors.ValidationError
			require.True(t, errors.As(err, &verr))
			for _, want := range tc.want {
				assert.ErrorIs(t, err, want)
			}
		})
	}

	assert.Zero(t, f.repo.count())
	assert.Zero(t, f.repo.inserts)
	f.alarm.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddMemoOnFutureDateAcceptsEarlyTime(t *testing.T) {
	f := newControllerFixture(t)
	f.ctrl.SetViewedDate(now.AddDate(0, 0, 1))
	f.alarm.On("Schedule", mock.Anything, mock.Anything, "Run", mock.Anything).Return(nil)

	result, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "06:00", Title: "Run"})
	require.NoError(t, err)
	assert.Equal(t, constant.ReminderScheduled, result.Reminder)
}

func TestAddMemoNormalizesLocation(t *testing.T) {
	f := newControllerFixture(t)
	f.alarm.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	blank, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "11:00", Title: "a", Location: strPtr("   ")})
	require.NoError(t, err)
	assert.Nil(t, blank.Memo.Location)

	place, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "12:00", Title: "b", Location: strPtr(" Taipei 101 ")})
	require.NoError(t, err)
	require.NotNil(t, place.Memo.Location)
	assert.Equal(t, "Taipei 101", *place.Memo.Location)
}

func TestAddMemoKeepsMemoWhenAlarmFails(t *testing.T) {
	f := newControllerFixture(t)
	f.alarm.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota"))

	result, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "15:00", Title: "Call"})
	require.NoError(t, err)
	assert.Equal(t, constant.ReminderFailed, result.Reminder)
	assert.ErrorIs(t, result.Warning, appErrors.ErrScheduling)
	assert.Equal(t, 1, f.repo.count())
}

func TestAddMemoStorageFailure(t *testing.T) {
	f := newControllerFixture(t)
	f.repo.failWrites = true

	_, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "15:00", Title: "Call"})
	assert.ErrorIs(t, err, appErrors.ErrDatabaseOperation)
	f.alarm.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteMemoCancelsReminder(t *testing.T) {
	f := newControllerFixture(t)
	f.alarm.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	result, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "16:00", Title: "Tea"})
	require.NoError(t, err)

	f.alarm.On("Cancel", mock.Anything, result.Memo.ID).Return(nil)
	f.notifier.On("Dismiss", mock.Anything, result.Memo.ID).Return(nil)

	require.NoError(t, f.ctrl.DeleteMemo(context.Background(), result.Memo))
	assert.Zero(t, f.repo.count())
	f.alarm.AssertCalled(t, "Cancel", mock.Anything, result.Memo.ID)
}

func TestDeleteMemoIgnoresCancelFailure(t *testing.T) {
	f := newControllerFixture(t)
	id, err := f.store.Insert(context.Background(), memoOn(now, "16:00", "Tea"))
	require.NoError(t, err)
	f.alarm.On("Cancel", mock.Anything, id).Return(errors.New("cron stopped"))

	assert.NoError(t, f.ctrl.DeleteMemo(context.Background(), &entity.Memo{ID: id}))
	assert.Zero(t, f.repo.count())
}

func TestGetMemoNotFound(t *testing.T) {
	f := newControllerFixture(t)

	_, err := f.ctrl.GetMemo(context.Background(), 12)
	assert.ErrorIs(t, err, appErrors.ErrMemoNotFound)
}

func TestObserveMemosFollowsViewedDate(t *testing.T) {
	f := newControllerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tomorrow := now.AddDate(0, 0, 1)
	_, err := f.store.Insert(ctx, memoOn(now, "11:00", "today"))
	require.NoError(t, err)
	_, err = f.store.Insert(ctx, memoOn(tomorrow, "11:00", "tomorrow"))
	require.NoError(t, err)

	ch, err := f.ctrl.ObserveMemos(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"today"}, titles(next(t, ch)))

	f.ctrl.SetViewedDate(tomorrow)
	assert.Equal(t, []string{"tomorrow"}, titles(next(t, ch)))

	f.alarm.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	_, err = f.ctrl.AddMemo(ctx, dto.AddMemoRequest{Time: "07:00", Title: "early"})
	require.NoError(t, err)
	assert.Equal(t, []string{"early", "tomorrow"}, titles(next(t, ch)))

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestConcurrentAddsAreAllStored(t *testing.T) {
	f := newControllerFixture(t)
	f.alarm.On("Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "20:00", Title: "same"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, f.repo.count())
}

func TestClosedControllerRejectsWrites(t *testing.T) {
	f := newControllerFixture(t)
	f.ctrl.Close()
	f.ctrl.Close()

	_, err := f.ctrl.AddMemo(context.Background(), dto.AddMemoRequest{Time: "20:00", Title: "late"})
	assert.ErrorIs(t, err, appErrors.ErrControllerClosed)
	assert.ErrorIs(t, f.ctrl.DeleteMemo(context.Background(), &entity.Memo{ID: 1}), appErrors.ErrControllerClosed)
}
