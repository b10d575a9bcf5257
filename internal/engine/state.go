package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ilyakutin/library-engine/internal/calendar"
	"github.com/ilyakutin/library-engine/internal/errs"
	"github.com/ilyakutin/library-engine/internal/model"
)

// State is the whole aggregate: every collection the engine owns. Callers
// never touch it directly; mutations go through the dispatcher, which works
// on a clone and swaps it in on success.
type State struct {
	Books    *BookStore
	Members  *MemberStore
	Loans    *LoanStore
	Totals   *TotalLoansStore
	Calendar *calendar.Calendar
}

func newState(minInterval time.Duration) *State {
	return &State{
		Books:    &BookStore{},
		Members:  &MemberStore{},
		Loans:    &LoanStore{},
		Totals:   &TotalLoansStore{},
		Calendar: calendar.New(minInterval),
	}
}

func (s *State) clone() *State {
	return &State{
		Books:    s.Books.clone(),
		Members:  s.Members.clone(),
		Loans:    s.Loans.clone(),
		Totals:   s.Totals.clone(),
		Calendar: s.Calendar.Clone(),
	}
}

func (s *State) snapshot() model.Snapshot {
	return model.Snapshot{
		Books:      append([]model.Book(nil), s.Books.Items...),
		Members:    append([]model.Member(nil), s.Members.Items...),
		Loans:      append([]model.Loan(nil), s.Loans.Items...),
		TotalLoans: append([]model.TotalLoans(nil), s.Totals.Items...),
		Calendar:   s.Calendar.View(),
		Errors: model.StoreErrors{
			Books:      s.Books.Err,
			Members:    s.Members.Err,
			Loans:      s.Loans.Err,
			TotalLoans: s.Totals.Err,
			Calendar:   s.Calendar.Err,
		},
	}
}

// apply commits a single mutation to its store. Cross-entity preconditions
// have already passed; stores only enforce tag/name match and existence.
func (s *State) apply(m mutation, now time.Time) error {
	switch m := m.(type) {
	case addBook:
		return s.Books.add(m.book, m.op)
	case updateBook:
		return s.Books.update(m.book, m.op)
	case deleteBook:
		return s.Books.delete(m.id, m.op)
	case setAvailability:
		return s.Books.setAvailability(m.bookID, m.available, m.op)
	case addMember:
		return s.Members.add(m.member, m.op, now)
	case updateMember:
		return s.Members.update(m.member, m.op, now)
	case deleteMember:
		return s.Members.delete(m.id, m.op)
	case adjustBorrowing:
		return s.Members.adjustBorrowing(m)
	case addLoan:
		return s.Loans.add(m.loan, m.op)
	case approveLoan:
		return s.Loans.approve(m.id, m.approvalDate, m.op)
	case returnLoan:
		return s.Loans.setReturned(m.id, m.returnDate, m.op)
	case markOverdue:
		return s.Loans.setOverdue(m.id, m.op)
	case deleteLoan:
		return s.Loans.delete(m.id, m.op)
	case addTotal:
		return s.Totals.add(m.memberID, m.op, m.now)
	case modifyTotal:
		return s.Totals.modify(m.memberID, m.delta, m.op, m.now)
	case deleteTotal:
		return s.Totals.delete(m.memberID, m.op)
	case addCalendarEntry:
		return s.Calendar.AddEntry(now, m.entry, m.op)
	case updateCalendarEntry:
		return s.Calendar.UpdateEntry(now, m.entry, m.op)
	case deleteCalendarEntry:
		return s.Calendar.DeleteEntry(now, m.id, m.op)
	case setCurrentDate:
		return s.Calendar.SetCurrentDate(now, m.date, m.op)
	}
	return errors.Wrapf(errs.ErrChart, "unknown mutation %T", m)
}

// recordError stores a rejection on the store the mutation addressed.
func (s *State) recordError(m mutation, err error) {
	switch m.(type) {
	case addBook, updateBook, deleteBook, setAvailability:
		s.Books.Err = err.Error()
	case addMember, updateMember, deleteMember, adjustBorrowing:
		s.Members.Err = err.Error()
	case addLoan, approveLoan, returnLoan, markOverdue, deleteLoan:
		s.Loans.Err = err.Error()
	case addTotal, modifyTotal, deleteTotal:
		s.Totals.Err = err.Error()
	case addCalendarEntry, updateCalendarEntry, deleteCalendarEntry, setCurrentDate:
		s.Calendar.Err = err.Error()
	}
}

type BookStore struct {
	Items         []model.Book
	LastOperation *model.Operation
	Err           string
}

func (s *BookStore) clone() *BookStore {
	cp := &BookStore{
		Items: make([]model.Book, len(s.Items)),
		Err:   s.Err,
	}
	copy(cp.Items, s.Items)
	if s.LastOperation != nil {
		op := *s.LastOperation
		cp.LastOperation = &op
	}
	return cp
}

func (s *BookStore) find(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *BookStore) Get(id string) (model.Book, bool) {
	if i := s.find(id); i >= 0 {
		return s.Items[i], true
	}
	return model.Book{}, false
}

func (s *BookStore) add(b model.Book, op model.Operation) error {
	if op.Name != model.OpBookPurchase {
		return errors.Wrapf(errs.ErrOperationTag, "adding book with %q", op.Name)
	}
	// New books are always purchasable into the available state (lib02).
	b.Available = true
	b.CurrentStatus = model.BookAvailable
	s.Items = append(s.Items, b)
	s.commit(op)
	return nil
}

func (s *BookStore) update(b model.Book, op model.Operation) error {
	if op.Name != model.OpBookModify {
		return errors.Wrapf(errs.ErrOperationTag, "modifying book with %q", op.Name)
	}
	i := s.find(b.ID)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "book")
	}
	// Availability is owned by the loan lifecycle, not by modify.
	b.Available = s.Items[i].Available
	b.CurrentStatus = s.Items[i].CurrentStatus
	s.Items[i] = b
	s.commit(op)
	return nil
}

func (s *BookStore) delete(id string, op model.Operation) error {
	if op.Name != model.OpBookDelete {
		return errors.Wrapf(errs.ErrOperationTag, "deleting book with %q", op.Name)
	}
	i := s.find(id)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "book")
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	s.commit(op)
	return nil
}

func (s *BookStore) setAvailability(id string, available bool, op model.Operation) error {
	if op.Name != model.OpBookAvailable {
		return errors.Wrapf(errs.ErrOperationTag, "inverting availability with %q", op.Name)
	}
	i := s.find(id)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "book")
	}
	s.Items[i].Available = available
	if available {
		s.Items[i].CurrentStatus = model.BookAvailable
	} else {
		s.Items[i].CurrentStatus = model.BookOnLoan
	}
	s.commit(op)
	return nil
}

func (s *BookStore) commit(op model.Operation) {
	s.LastOperation = &op
	s.Err = ""
}

type MemberStore struct {
	Items         []model.Member
	LastOperation *model.Operation
	Err           string
}

func (s *MemberStore) clone() *MemberStore {
	cp := &MemberStore{
		Items: make([]model.Member, len(s.Items)),
		Err:   s.Err,
	}
	copy(cp.Items, s.Items)
	if s.LastOperation != nil {
		op := *s.LastOperation
		cp.LastOperation = &op
	}
	return cp
}

func (s *MemberStore) find(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemberStore) Get(id string) (model.Member, bool) {
	if i := s.find(id); i >= 0 {
		return s.Items[i], true
	}
	return model.Member{}, false
}

func (s *MemberStore) add(m model.Member, op model.Operation, now time.Time) error {
	if op.Name != model.OpMemberAdd {
		return errors.Wrapf(errs.ErrOperationTag, "adding member with %q", op.Name)
	}
	m.BorrowingStatus = model.UnderLimit
	m.TotalLoans = 0
	m.CurrentLoans = 0
	m.CreatedAt = now
	m.UpdatedAt = now
	s.Items = append(s.Items, m)
	s.commit(op)
	return nil
}

func (s *MemberStore) update(m model.Member, op model.Operation, now time.Time) error {
	if op.Name != model.OpMemberModify {
		return errors.Wrapf(errs.ErrOperationTag, "modifying member with %q", op.Name)
	}
	i := s.find(m.ID)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "member")
	}
	// Counters are owned by the loan lifecycle.
	m.TotalLoans = s.Items[i].TotalLoans
	m.CurrentLoans = s.Items[i].CurrentLoans
	m.CreatedAt = s.Items[i].CreatedAt
	m.UpdatedAt = now
	s.Items[i] = m
	s.commit(op)
	return nil
}

func (s *MemberStore) delete(id string, op model.Operation) error {
	if op.Name != model.OpMemberDelete {
		return errors.Wrapf(errs.ErrOperationTag, "deleting member with %q", op.Name)
	}
	i := s.find(id)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "member")
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	s.commit(op)
	return nil
}

func (s *MemberStore) adjustBorrowing(m adjustBorrowing) error {
	if m.op.Name != model.OpMemberBorrowing {
		return errors.Wrapf(errs.ErrOperationTag, "adjusting borrowing with %q", m.op.Name)
	}
	i := s.find(m.memberID)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "member")
	}
	mem := s.Items[i]
	mem.CurrentLoans += m.delta
	if mem.CurrentLoans < 0 {
		mem.CurrentLoans = 0
	}
	if m.lifetime {
		mem.TotalLoans++
	}
	if mem.CurrentLoans >= m.cap {
		mem.BorrowingStatus = model.OverLimit
	} else {
		mem.BorrowingStatus = model.UnderLimit
	}
	mem.UpdatedAt = m.now
	s.Items[i] = mem
	s.commit(m.op)
	return nil
}

func (s *MemberStore) commit(op model.Operation) {
	s.LastOperation = &op
	s.Err = ""
}

type LoanStore struct {
	Items         []model.Loan
	LastOperation *model.Operation
	Err           string
}

func (s *LoanStore) clone() *LoanStore {
	cp := &LoanStore{
		Items: make([]model.Loan, len(s.Items)),
		Err:   s.Err,
	}
	copy(cp.Items, s.Items)
	if s.LastOperation != nil {
		op := *s.LastOperation
		cp.LastOperation = &op
	}
	return cp
}

func (s *LoanStore) find(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *LoanStore) Get(id string) (model.Loan, bool) {
	if i := s.find(id); i >= 0 {
		return s.Items[i], true
	}
	return model.Loan{}, false
}

// ActiveCount counts the member's loans that still tie up books.
func (s *LoanStore) ActiveCount(memberID string) int {
	n := 0
	for _, l := range s.Items {
		if l.MemberID == memberID && l.Active() {
			n++
		}
	}
	return n
}

// ActiveOnBook reports whether any active loan references the book.
func (s *LoanStore) ActiveOnBook(bookID string) bool {
	for _, l := range s.Items {
		if l.BookID == bookID && l.Active() {
			return true
		}
	}
	return false
}

func (s *LoanStore) add(l model.Loan, op model.Operation) error {
	if op.Name != model.OpLoanRequest {
		return errors.Wrapf(errs.ErrOperationTag, "requesting loan with %q", op.Name)
	}
	l.Status = model.LoanRequested
	s.Items = append(s.Items, l)
	s.commit(op)
	return nil
}

func (s *LoanStore) approve(id string, approvalDate time.Time, op model.Operation) error {
	if op.Name != model.OpLoanApproved || op.Type != model.OpNormal {
		return errors.Wrapf(errs.ErrOperationTag, "approving loan with %s/%s", op.Type, op.Name)
	}
	i := s.find(id)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "loan")
	}
	// Approval lands the loan in the internal current status (lib27).
	s.Items[i].Status = model.LoanCurrent
	s.Items[i].ApprovalDate = &approvalDate
	s.commit(op)
	return nil
}

func (s *LoanStore) setReturned(id string, returnDate time.Time, op model.Operation) error {
	if op.Name != model.OpLoanApproved || op.Type != model.OpReadOnly {
		return errors.Wrapf(errs.ErrOperationTag, "returning loan with %s/%s", op.Type, op.Name)
	}
	i := s.find(id)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "loan")
	}
	s.Items[i].Status = model.LoanReturned
	s.Items[i].ReturnDate = &returnDate
	s.commit(op)
	return nil
}

func (s *LoanStore) setOverdue(id string, op model.Operation) error {
	if op.Name != model.OpLoanOverdue {
		return errors.Wrapf(errs.ErrOperationTag, "marking overdue with %q", op.Name)
	}
	i := s.find(id)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "loan")
	}
	s.Items[i].Status = model.LoanOverdue
	s.commit(op)
	return nil
}

func (s *LoanStore) delete(id string, op model.Operation) error {
	if op.Name != model.OpLoanDelete {
		return errors.Wrapf(errs.ErrOperationTag, "deleting loan with %q", op.Name)
	}
	i := s.find(id)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "loan")
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	s.commit(op)
	return nil
}

func (s *LoanStore) commit(op model.Operation) {
	s.LastOperation = &op
	s.Err = ""
}

type TotalLoansStore struct {
	Items         []model.TotalLoans
	LastOperation *model.Operation
	Err           string
}

func (s *TotalLoansStore) clone() *TotalLoansStore {
	cp := &TotalLoansStore{
		Items: make([]model.TotalLoans, len(s.Items)),
		Err:   s.Err,
	}
	copy(cp.Items, s.Items)
	if s.LastOperation != nil {
		op := *s.LastOperation
		cp.LastOperation = &op
	}
	return cp
}

func (s *TotalLoansStore) findMember(memberID string) int {
	for i := range s.Items {
		if s.Items[i].MemberID == memberID {
			return i
		}
	}
	return -1
}

func (s *TotalLoansStore) Get(memberID string) (model.TotalLoans, bool) {
	if i := s.findMember(memberID); i >= 0 {
		return s.Items[i], true
	}
	return model.TotalLoans{}, false
}

func (s *TotalLoansStore) add(memberID string, op model.Operation, now time.Time) error {
	if op.Name != model.OpTotalLoansAdd {
		return errors.Wrapf(errs.ErrOperationTag, "adding total loans with %q", op.Name)
	}
	s.Items = append(s.Items, model.TotalLoans{
		ID:          uuid.NewString(),
		MemberID:    memberID,
		Count:       1,
		LastUpdated: now,
	})
	s.commit(op)
	return nil
}

func (s *TotalLoansStore) modify(memberID string, delta int, op model.Operation, now time.Time) error {
	if op.Name != model.OpTotalLoansModify {
		return errors.Wrapf(errs.ErrOperationTag, "modifying total loans with %q", op.Name)
	}
	i := s.findMember(memberID)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "total loans")
	}
	s.Items[i].Count += delta
	if s.Items[i].Count < 0 {
		s.Items[i].Count = 0
	}
	s.Items[i].LastUpdated = now
	s.commit(op)
	return nil
}

func (s *TotalLoansStore) delete(memberID string, op model.Operation) error {
	if op.Name != model.OpTotalLoansDelete {
		return errors.Wrapf(errs.ErrOperationTag, "deleting total loans with %q", op.Name)
	}
	i := s.findMember(memberID)
	if i < 0 {
		return errors.Wrap(errs.ErrNotFound, "total loans")
	}
	s.Items = append(s.Items[:i], s.Items[i+1:]...)
	s.commit(op)
	return nil
}

func (s *TotalLoansStore) commit(op model.Operation) {
	s.LastOperation = &op
	s.Err = ""
}
