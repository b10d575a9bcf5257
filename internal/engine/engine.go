// Package engine is the constraint/state-transition core. Every mutation
// goes through one dispatcher: chart check, cross-entity validation, apply
// on a working copy, then propagation of derived mutations through the same
// pipeline. The copy is swapped in only when the whole cascade commits, so
// a rejection leaves observable state untouched.
package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ilyakutin/library-engine/internal/calendar"
	"github.com/ilyakutin/library-engine/internal/errs"
	"github.com/ilyakutin/library-engine/internal/model"
)

type Config struct {
	MaxLoansPerMember   int           `envconfig:"MAX_LOANS_PER_MEMBER" default:"5"`
	LoanPeriodDays      int           `envconfig:"LOAN_PERIOD_DAYS" default:"14"`
	CalendarMinInterval time.Duration `envconfig:"CALENDAR_MIN_INTERVAL" default:"1s"`
}

func (c *Config) setDefaults() {
	if c.MaxLoansPerMember <= 0 {
		c.MaxLoansPerMember = 5
	}
	if c.LoanPeriodDays <= 0 {
		c.LoanPeriodDays = 14
	}
	if c.CalendarMinInterval <= 0 {
		c.CalendarMinInterval = calendar.DefaultMinInterval
	}
}

type Engine struct {
	mu    sync.Mutex
	cfg   Config
	log   *zap.Logger
	now   func() time.Time
	state *State
}

type Option func(*Engine)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(cfg Config, log *zap.Logger, opts ...Option) *Engine {
	cfg.setDefaults()
	e := &Engine{
		cfg:   cfg,
		log:   log.Named("engine"),
		now:   time.Now,
		state: newState(cfg.CalendarMinInterval),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// submit runs one external mutation and its cascade.
func (e *Engine) submit(m mutation) (model.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	st := e.state.clone()
	if err := e.run(st, m, now); err != nil {
		e.state.recordError(m, err)
		e.log.Warn("mutation rejected",
			zap.String("operation", m.tag().Name),
			zap.Error(err))
		return e.state.snapshot(), err
	}
	e.state = st
	e.log.Debug("mutation committed", zap.String("operation", m.tag().Name))
	return e.state.snapshot(), nil
}

func (e *Engine) run(st *State, m mutation, now time.Time) error {
	if err := checkChart(m); err != nil {
		return err
	}
	if err := e.validate(st, m); err != nil {
		return err
	}
	if err := st.apply(m, now); err != nil {
		return err
	}
	for _, f := range e.propagate(st, m, now) {
		if err := e.run(st, f, now); err != nil {
			// Calendar follow-ups are best effort: a debounce hit or an
			// uninitialized calendar must not unwind the committed primary.
			if isCalendarMutation(f) &&
				(errors.Is(err, errs.ErrDebounce) || errors.Is(err, errs.ErrUninitialized)) {
				st.Calendar.Err = err.Error()
				e.log.Warn("calendar follow-up skipped", zap.Error(err))
				continue
			}
			return err
		}
	}
	return nil
}

func (e *Engine) AddBook(book model.Book, op model.Operation) (model.Snapshot, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	return e.submit(addBook{op: op, book: book})
}

func (e *Engine) UpdateBook(book model.Book, op model.Operation) (model.Snapshot, error) {
	return e.submit(updateBook{op: op, book: book})
}

func (e *Engine) DeleteBook(id string, op model.Operation) (model.Snapshot, error) {
	return e.submit(deleteBook{op: op, id: id})
}

func (e *Engine) AddMember(member model.Member, op model.Operation) (model.Snapshot, error) {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.Status == "" {
		member.Status = model.MemberPermitted
	}
	return e.submit(addMember{op: op, member: member})
}

func (e *Engine) UpdateMember(member model.Member, op model.Operation) (model.Snapshot, error) {
	return e.submit(updateMember{op: op, member: member})
}

func (e *Engine) DeleteMember(id string, op model.Operation) (model.Snapshot, error) {
	return e.submit(deleteMember{op: op, id: id})
}

func (e *Engine) RequestLoan(loan model.Loan, op model.Operation) (model.Snapshot, error) {
	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}
	if loan.RequestDate.IsZero() {
		loan.RequestDate = e.now()
	}
	return e.submit(addLoan{op: op, loan: loan})
}

func (e *Engine) ApproveLoan(id string, approvalDate time.Time, op model.Operation) (model.Snapshot, error) {
	return e.submit(approveLoan{op: op, id: id, approvalDate: approvalDate})
}

func (e *Engine) ReturnLoan(id string, returnDate time.Time, op model.Operation) (model.Snapshot, error) {
	return e.submit(returnLoan{op: op, id: id, returnDate: returnDate})
}

func (e *Engine) MarkOverdue(id string, op model.Operation) (model.Snapshot, error) {
	return e.submit(markOverdue{op: op, id: id})
}

func (e *Engine) DeleteLoan(id string, op model.Operation) (model.Snapshot, error) {
	return e.submit(deleteLoan{op: op, id: id})
}

// InitializeCalendar is idempotent and not subject to the debounce.
func (e *Engine) InitializeCalendar() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Calendar.Initialize(e.now())
	return e.state.snapshot()
}

func (e *Engine) AddCalendarEntry(entry model.CalendarEntry, op model.Operation) (model.Snapshot, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return e.submit(addCalendarEntry{op: op, entry: entry})
}

func (e *Engine) UpdateCalendarEntry(entry model.CalendarEntry, op model.Operation) (model.Snapshot, error) {
	return e.submit(updateCalendarEntry{op: op, entry: entry})
}

func (e *Engine) DeleteCalendarEntry(id string, op model.Operation) (model.Snapshot, error) {
	return e.submit(deleteCalendarEntry{op: op, id: id})
}

func (e *Engine) SetCurrentDate(date time.Time, op model.Operation) (model.Snapshot, error) {
	return e.submit(setCurrentDate{op: op, date: date})
}

// Snapshot returns a copy of the whole aggregate.
func (e *Engine) Snapshot() model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.snapshot()
}

func (e *Engine) Book(id string) (model.Book, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok := e.state.Books.Get(id); ok {
		return b, nil
	}
	return model.Book{}, errors.Wrap(errs.ErrNotFound, "book")
}

func (e *Engine) Member(id string) (model.Member, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.state.Members.Get(id); ok {
		return m, nil
	}
	return model.Member{}, errors.Wrap(errs.ErrNotFound, "member")
}

func (e *Engine) Loan(id string) (model.Loan, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l, ok := e.state.Loans.Get(id); ok {
		return l, nil
	}
	return model.Loan{}, errors.Wrap(errs.ErrNotFound, "loan")
}

func (e *Engine) Books() []model.Book {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Book(nil), e.state.Books.Items...)
}

func (e *Engine) Members() []model.Member {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Member(nil), e.state.Members.Items...)
}

func (e *Engine) Loans() []model.Loan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.Loan(nil), e.state.Loans.Items...)
}

// Calendar returns the read-only, date-sorted calendar view.
func (e *Engine) Calendar() model.CalendarView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Calendar.View()
}
