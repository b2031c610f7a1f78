package service

import (
	"context"
	"errors"
	"fmt"
	"memocal/internal/application/dto"
	"memocal/internal/domain/entity"
	"memocal/internal/pkg/dateutil"
	appErrors "memocal/internal/pkg/errors"
	"memocal/internal/pkg/logger"
	"strings"
	"sync"
	"time"

	"github.com/jmhodges/clock"
)

// writeQueueDepth bounds how many writes may wait for the worker.
const writeQueueDepth = 8

type writeJob struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

type memoController struct {
	store     MemoStore
	reminders ReminderScheduler
	clock     clock.Clock
	log       logger.Logger

	mu          sync.RWMutex
	viewedDate  time.Time     // meaningful only when pinned
	pinned      bool          // false: the viewed date follows today
	dateChanged chan struct{} // closed and replaced on every explicit date change

	writes    chan writeJob
	quit      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewMemoController creates a MemoController following today and starts its write worker.
func NewMemoController(store MemoStore, reminders ReminderScheduler, clk clock.Clock, log logger.Logger) MemoController {
	c := &memoController{
		store:       store,
		reminders:   reminders,
		clock:       clk,
		log:         log,
		dateChanged: make(chan struct{}),
		writes:      make(chan writeJob, writeQueueDepth),
		quit:        make(chan struct{}),
	}
	c.wg.Add(1)
	go c.writeLoop()
	return c
}

// writeLoop applies writes one at a time in submission order.
func (c *memoController) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case job := <-c.writes:
			job.done <- job.run(job.ctx)
		case <-c.quit:
			// Drain what was accepted before Close.
			for {
				select {
				case job := <-c.writes:
					job.done <- job.run(job.ctx)
				default:
					return
				}
			}
		}
	}
}

// submit hands run to the write worker and waits for its result.
func (c *memoController) submit(ctx context.Context, run func(ctx context.Context) error) error {
	job := writeJob{ctx: ctx, run: run, done: make(chan error, 1)}
	select {
	case <-c.quit:
		return appErrors.ErrControllerClosed
	default:
	}
	select {
	case c.writes <- job:
	case <-c.quit:
		return appErrors.ErrControllerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *memoController) ViewedDate() time.Time {
	date, _ := c.viewed()
	return date
}

func (c *memoController) viewed() (time.Time, <-chan struct{}) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.pinned {
		return dateutil.Today(c.clock), c.dateChanged
	}
	return c.viewedDate, c.dateChanged
}

// SetViewedDate pins the viewed date. Choosing today returns to following today.
func (c *memoController) SetViewedDate(date time.Time) {
	date = dateutil.StartOfDay(date.In(c.Location()))
	today := dateutil.Today(c.clock)

	c.mu.Lock()
	defer c.mu.Unlock()
	current := today
	if c.pinned {
		current = c.viewedDate
	}
	c.pinned = !date.Equal(today)
	c.viewedDate = date
	if date.Equal(current) {
		return
	}
	close(c.dateChanged)
	c.dateChanged = make(chan struct{})
	c.log.Info(fmt.Sprintf("Viewed date changed to %s", date.Format(time.DateOnly)))
}

func (c *memoController) Location() *time.Location {
	return c.clock.Now().Location()
}

// rollover returns a channel that fires at the next midnight, or nil when the
// viewed date is pinned.
func (c *memoController) rollover() (<-chan time.Time, func() bool) {
	c.mu.RLock()
	pinned := c.pinned
	c.mu.RUnlock()
	if pinned {
		return nil, func() bool { return false }
	}
	now := c.clock.Now()
	timer := c.clock.NewTimer(dateutil.StartOfDay(now).AddDate(0, 0, 1).Sub(now))
	return timer.C, timer.Stop
}

// ObserveMemos forwards the store's live list for the viewed date. It
// re-subscribes when the viewed date changes or today rolls over.
func (c *memoController) ObserveMemos(ctx context.Context) (<-chan []*entity.Memo, error) {
	date, changed := c.viewed()
	innerCtx, cancel := context.WithCancel(ctx)
	inner, err := c.store.QueryByDate(innerCtx, date)
	if err != nil {
		cancel()
		return nil, err
	}
	midnight, stopTimer := c.rollover()

	out := make(chan []*entity.Memo, 1)
	go func() {
		defer close(out)
		defer func() { cancel(); stopTimer() }()

		resubscribe := func() bool {
			cancel()
			stopTimer()
			date, changed = c.viewed()
			innerCtx, cancel = context.WithCancel(ctx)
			midnight, stopTimer = c.rollover()
			next, err := c.store.QueryByDate(innerCtx, date)
			if err != nil {
				c.log.Error(fmt.Sprintf("Failed to re-subscribe to memos for %s", date.Format(time.DateOnly)), err)
				return false
			}
			inner = next
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
				if !resubscribe() {
					return
				}
			case <-midnight:
				c.log.Info("Day rolled over, following the new date")
				if !resubscribe() {
					return
				}
			case memos, ok := <-inner:
				if !ok {
					return
				}
				// Keep only the newest list for a slow reader.
				select {
				case <-out:
				default:
				}
				out <- memos
			}
		}
	}()
	return out, nil
}

func (c *memoController) ListMemos(ctx context.Context) ([]*entity.Memo, error) {
	return c.store.ListByDate(ctx, c.ViewedDate())
}

func (c *memoController) GetMemo(ctx context.Context, id uint) (*entity.Memo, error) {
	memo, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if memo == nil {
		return nil, appErrors.ErrMemoNotFound
	}
	return memo, nil
}

// AddMemo validates the input, stores a memo for the viewed date and evaluates its reminder.
// A reminder that cannot be scheduled does not fail the call; it is reported in the result.
func (c *memoController) AddMemo(ctx context.Context, req dto.AddMemoRequest) (*dto.AddMemoResult, error) {
	date := c.ViewedDate()
	memo, err := c.buildMemo(date, req)
	if err != nil {
		return nil, err
	}

	var result *dto.AddMemoResult
	err = c.submit(ctx, func(ctx context.Context) error {
		id, err := c.store.Insert(ctx, memo)
		if err != nil {
			return err
		}
		memo.ID = id

		status, warn := c.reminders.Evaluate(ctx, memo)
		result = &dto.AddMemoResult{Memo: memo, Reminder: status, Warning: warn}
		return nil
	})
	if err != nil {
		c.log.Error(fmt.Sprintf("Failed to add memo %q", memo.Title), err)
		return nil, err
	}
	c.log.Info(fmt.Sprintf("Added memo %d at %s (reminder: %s)", memo.ID, memo.Time, result.Reminder))
	return result, nil
}

// buildMemo re-enforces the input rules and normalises the fields.
func (c *memoController) buildMemo(date time.Time, req dto.AddMemoRequest) (*entity.Memo, error) {
	verr := appErrors.ValidationError{}
	if err := req.Validate(); err != nil {
		if !errors.As(err, &verr) {
			return nil, err
		}
	}

	clockTime, ok := dateutil.NormalizeClock(req.Time)
	if ok {
		at, _ := dateutil.Combine(date, clockTime)
		if !at.After(c.clock.Now()) {
			verr = append(verr, appErrors.FieldError{Field: "time", Err: appErrors.ErrTimeInPast})
		}
	}
	if len(verr) > 0 {
		c.log.Debug(fmt.Sprintf("Rejected memo input: %v", verr))
		return nil, verr
	}

	return &entity.Memo{
		Date:     dateutil.ToEpochStartOfDay(date),
		Time:     clockTime,
		Title:    strings.TrimSpace(req.Title),
		Location: entity.NormalizeLocation(req.Location),
	}, nil
}

// DeleteMemo removes the memo, then cancels its reminder.
func (c *memoController) DeleteMemo(ctx context.Context, memo *entity.Memo) error {
	if memo == nil {
		return nil
	}
	err := c.submit(ctx, func(ctx context.Context) error {
		if err := c.store.Delete(ctx, memo); err != nil {
			return err
		}
		if err := c.reminders.Cancel(ctx, memo.ID); err != nil {
			// The memo is gone; a leftover alarm finds nothing to deliver.
			c.log.Warn(fmt.Sprintf("Reminder for deleted memo %d not cancelled: %v", memo.ID, err))
		}
		return nil
	})
	if err != nil {
		c.log.Error(fmt.Sprintf("Failed to delete memo %d", memo.ID), err)
		return err
	}
	c.log.Info(fmt.Sprintf("Deleted memo %d", memo.ID))
	return nil
}

func (c *memoController) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		c.wg.Wait()
	})
}
