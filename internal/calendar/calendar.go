// Package calendar owns the system calendar: a caller-set current-date
// cursor and a list of dated entries kept sorted ascending. Consecutive
// mutations of the same operation category inside a minimum interval are
// rejected to damp runaway cascades.
package calendar

import (
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/ilyakutin/library-engine/internal/errs"
	"github.com/ilyakutin/library-engine/internal/model"
)

const DefaultMinInterval = time.Second

type Calendar struct {
	Initialized   bool
	CurrentDate   time.Time
	LastModified  time.Time
	LastOperation *model.Operation
	Entries       []model.CalendarEntry
	Err           string

	minInterval time.Duration
}

func New(minInterval time.Duration) *Calendar {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Calendar{minInterval: minInterval}
}

func (c *Calendar) Clone() *Calendar {
	cp := *c
	cp.Entries = make([]model.CalendarEntry, len(c.Entries))
	copy(cp.Entries, c.Entries)
	if c.LastOperation != nil {
		op := *c.LastOperation
		cp.LastOperation = &op
	}
	return &cp
}

// Initialize is idempotent: a second call only refreshes lastOperation.
func (c *Calendar) Initialize(now time.Time) {
	if !c.Initialized {
		c.Initialized = true
		c.CurrentDate = now
		c.LastModified = now
	}
	c.LastOperation = &model.Operation{
		Type:         model.OpReadOnly,
		Name:         model.OpCalendarCurrent,
		ConstraintID: "lib42",
	}
	c.Err = ""
}

func (c *Calendar) AddEntry(now time.Time, entry model.CalendarEntry, op model.Operation) error {
	if err := c.guard(now, op, model.OpCalendarAdd, model.OpInsertion); err != nil {
		return err
	}
	entry.Operation = &op
	c.Entries = append(c.Entries, entry)
	c.commit(now, op)
	return nil
}

func (c *Calendar) UpdateEntry(now time.Time, entry model.CalendarEntry, op model.Operation) error {
	if err := c.guard(now, op, model.OpCalendarModify, model.OpAmendment); err != nil {
		return err
	}
	i := c.index(entry.ID)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "calendar entry")
	}
	entry.Operation = &op
	c.Entries[i] = entry
	c.commit(now, op)
	return nil
}

func (c *Calendar) DeleteEntry(now time.Time, id string, op model.Operation) error {
	if err := c.guard(now, op, model.OpCalendarDelete, model.OpDeletion); err != nil {
		return err
	}
	i := c.index(id)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "calendar entry")
	}
	c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
	c.commit(now, op)
	return nil
}

// SetCurrentDate moves the cursor. The cursor is never polled from the
// wall clock; callers advance it explicitly.
func (c *Calendar) SetCurrentDate(now, date time.Time, op model.Operation) error {
	if !c.Initialized {
		return errs.ErrUninitialized
	}
	if op.Name != model.OpCalendarCurrent {
		return errors.Wrapf(errs.ErrOperationTag, "got %q", op.Name)
	}
	c.CurrentDate = date
	c.commit(now, op)
	return nil
}

func (c *Calendar) View() model.CalendarView {
	entries := make([]model.CalendarEntry, len(c.Entries))
	copy(entries, c.Entries)
	return model.CalendarView{
		Initialized:   c.Initialized,
		CurrentDate:   c.CurrentDate,
		LastModified:  c.LastModified,
		LastOperation: c.LastOperation,
		Entries:       entries,
		Err:           c.Err,
	}
}

func (c *Calendar) guard(now time.Time, op model.Operation, wantName string, wantType model.OpType) error {
	if !c.Initialized {
		return errs.ErrUninitialized
	}
	if op.Name != wantName || op.Type != wantType {
		return errors.Wrapf(errs.ErrOperationTag, "want %s/%s, got %s/%s", wantType, wantName, op.Type, op.Name)
	}
	if c.LastOperation != nil && c.LastOperation.Type == op.Type &&
		now.Sub(c.LastModified) < c.minInterval {
		return errors.Wrapf(errs.ErrDebounce, "%s within %s", op.Type, c.minInterval)
	}
	return nil
}

func (c *Calendar) commit(now time.Time, op model.Operation) {
	sort.SliceStable(c.Entries, func(i, j int) bool {
		return c.Entries[i].Date.Before(c.Entries[j].Date)
	})
	c.LastModified = now
	c.LastOperation = &op
	c.Err = ""
}

func (c *Calendar) index(id string) int {
	for i := range c.Entries {
		if c.Entries[i].ID == id {
			return i
		}
	}
	return -1
}
