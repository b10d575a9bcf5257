package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ilyakutin/library-engine/internal/errs"
	"github.com/ilyakutin/library-engine/internal/model"
)

var day0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// stepClock advances a fixed amount per reading, far enough apart that the
// calendar debounce never fires between submissions.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(Config{}, zap.NewNop(), WithClock(stepClock(day0, 2*time.Second)))
	e.InitializeCalendar()
	return e
}

func addTestBook(t *testing.T, e *Engine, id, isbn string) {
	t.Helper()
	_, err := e.AddBook(model.Book{
		ID:       id,
		Title:    "The Master and Margarita",
		Author:   "Bulgakov",
		ISBN:     isbn,
		Quantity: 1,
	}, TagBookPurchase())
	require.NoError(t, err)
}

func addTestMember(t *testing.T, e *Engine, id string) {
	t.Helper()
	_, err := e.AddMember(model.Member{
		ID:    id,
		Name:  "Ivan Petrov",
		Email: "ivan@example.com",
	}, TagMemberAdd())
	require.NoError(t, err)
}

func requestTestLoan(t *testing.T, e *Engine, id, bookID, memberID string) {
	t.Helper()
	_, err := e.RequestLoan(model.Loan{
		ID:          id,
		BookID:      bookID,
		MemberID:    memberID,
		RequestDate: day0,
	}, TagLoanRequest())
	require.NoError(t, err)
}

func findEntry(entries []model.CalendarEntry, desc string) (model.CalendarEntry, bool) {
	for _, en := range entries {
		if en.Description == desc {
			return en, true
		}
	}
	return model.CalendarEntry{}, false
}

func TestAddBook(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "978-5-17-087885-8")

	b, err := e.Book("b1")
	require.NoError(t, err)
	require.True(t, b.Available)
	require.Equal(t, model.BookAvailable, b.CurrentStatus)

	// Purchasing a book lands a maintenance note on the calendar.
	_, ok := findEntry(e.Calendar().Entries, "Book added: b1")
	require.True(t, ok)
}

func TestAddBookDuplicateISBN(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "978-5-17-087885-8")

	snap, err := e.AddBook(model.Book{
		ID:    "b2",
		Title: "Another printing",
		ISBN:  "978-5-17-087885-8",
	}, TagBookPurchase())
	require.Error(t, err)
	require.True(t, errs.IsViolation(err))

	// Rejection leaves the aggregate untouched, the error lands on the store.
	require.Len(t, snap.Books, 1)
	require.NotEmpty(t, snap.Errors.Books)
	require.Len(t, e.Books(), 1)
}

func TestMismatchedTagRejected(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.AddBook(model.Book{ID: "b1", Title: "x", ISBN: "1"}, TagMemberAdd())
	require.True(t, errors.Is(err, errs.ErrOperationTag))
	require.Empty(t, e.Books())
}

func TestLoanLifecycle(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "978-5-17-087885-8")
	addTestMember(t, e, "m1")

	requestTestLoan(t, e, "l1", "b1", "m1")

	// The book is tied up from the moment of the request.
	b, err := e.Book("b1")
	require.NoError(t, err)
	require.False(t, b.Available)
	require.Equal(t, model.BookOnLoan, b.CurrentStatus)

	l, err := e.Loan("l1")
	require.NoError(t, err)
	require.Equal(t, model.LoanRequested, l.Status)

	// Counters do not move until approval.
	m, err := e.Member("m1")
	require.NoError(t, err)
	require.Zero(t, m.CurrentLoans)
	require.Zero(t, m.TotalLoans)

	approvalDate := day0.AddDate(0, 0, 1)
	snap, err := e.ApproveLoan("l1", approvalDate, TagLoanApprove())
	require.NoError(t, err)

	l, err = e.Loan("l1")
	require.NoError(t, err)
	require.Equal(t, model.LoanCurrent, l.Status)
	require.NotNil(t, l.ApprovalDate)
	require.Equal(t, approvalDate, *l.ApprovalDate)

	m, err = e.Member("m1")
	require.NoError(t, err)
	require.Equal(t, 1, m.CurrentLoans)
	require.Equal(t, 1, m.TotalLoans)
	require.Equal(t, model.UnderLimit, m.BorrowingStatus)

	require.Len(t, snap.TotalLoans, 1)
	require.Equal(t, "m1", snap.TotalLoans[0].MemberID)
	require.Equal(t, 1, snap.TotalLoans[0].Count)

	due, ok := findEntry(snap.Calendar.Entries, "Loan due for l1")
	require.True(t, ok)
	require.Equal(t, approvalDate.AddDate(0, 0, 14), due.Date)
	require.Equal(t, model.EntryDueDate, due.Type)

	returnDate := approvalDate.AddDate(0, 0, 10)
	snap, err = e.ReturnLoan("l1", returnDate, TagLoanReturn())
	require.NoError(t, err)

	l, err = e.Loan("l1")
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, l.Status)
	require.NotNil(t, l.ReturnDate)
	require.Equal(t, returnDate, *l.ReturnDate)

	b, err = e.Book("b1")
	require.NoError(t, err)
	require.True(t, b.Available)
	require.Equal(t, model.BookAvailable, b.CurrentStatus)

	// The current counter drops, the lifetime one stays.
	m, err = e.Member("m1")
	require.NoError(t, err)
	require.Zero(t, m.CurrentLoans)
	require.Equal(t, 1, m.TotalLoans)

	// The aggregate record is gone once the count reaches zero.
	require.Empty(t, snap.TotalLoans)

	ret, ok := findEntry(snap.Calendar.Entries, "Loan returned for l1")
	require.True(t, ok)
	require.Equal(t, returnDate, ret.Date)

	// Only a returned loan may be removed from the ledger.
	_, err = e.DeleteLoan("l1", TagLoanDelete())
	require.NoError(t, err)
	require.Empty(t, e.Loans())
}

func TestReturnRequiresApprovedLoan(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "1")
	addTestMember(t, e, "m1")
	requestTestLoan(t, e, "l1", "b1", "m1")

	_, err := e.ReturnLoan("l1", day0.AddDate(0, 0, 1), TagLoanReturn())
	require.True(t, errs.IsViolation(err))

	l, err := e.Loan("l1")
	require.NoError(t, err)
	require.Equal(t, model.LoanRequested, l.Status)
}

func TestOverdueLifecycle(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "1")
	addTestMember(t, e, "m1")
	requestTestLoan(t, e, "l1", "b1", "m1")

	// Only an approved loan can become overdue.
	_, err := e.MarkOverdue("l1", TagLoanOverdue())
	require.True(t, errs.IsViolation(err))

	_, err = e.ApproveLoan("l1", day0.AddDate(0, 0, 1), TagLoanApprove())
	require.NoError(t, err)

	_, err = e.MarkOverdue("l1", TagLoanOverdue())
	require.NoError(t, err)

	l, err := e.Loan("l1")
	require.NoError(t, err)
	require.Equal(t, model.LoanOverdue, l.Status)

	// An overdue loan still returns normally.
	_, err = e.ReturnLoan("l1", day0.AddDate(0, 0, 20), TagLoanReturn())
	require.NoError(t, err)

	m, err := e.Member("m1")
	require.NoError(t, err)
	require.Zero(t, m.CurrentLoans)
}

func TestDeleteLoanRequiresReturned(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "1")
	addTestMember(t, e, "m1")
	requestTestLoan(t, e, "l1", "b1", "m1")

	_, err := e.DeleteLoan("l1", TagLoanDelete())
	require.True(t, errs.IsViolation(err))
	require.Len(t, e.Loans(), 1)
}

func TestLoanCap(t *testing.T) {
	e := newTestEngine(t)
	addTestMember(t, e, "m1")
	for i := 0; i < 6; i++ {
		addTestBook(t, e, fmt.Sprintf("b%d", i), fmt.Sprintf("isbn-%d", i))
	}

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("l%d", i)
		requestTestLoan(t, e, id, fmt.Sprintf("b%d", i), "m1")
		_, err := e.ApproveLoan(id, day0.AddDate(0, 0, 1), TagLoanApprove())
		require.NoError(t, err)
	}

	m, err := e.Member("m1")
	require.NoError(t, err)
	require.Equal(t, 5, m.CurrentLoans)
	require.Equal(t, model.OverLimit, m.BorrowingStatus)

	// The sixth request bounces off the limit.
	_, err = e.RequestLoan(model.Loan{
		ID: "l5", BookID: "b5", MemberID: "m1", RequestDate: day0,
	}, TagLoanRequest())
	require.True(t, errs.IsViolation(err))
	require.Len(t, e.Loans(), 5)

	// Returning one loan opens the window again.
	_, err = e.ReturnLoan("l0", day0.AddDate(0, 0, 2), TagLoanReturn())
	require.NoError(t, err)

	m, err = e.Member("m1")
	require.NoError(t, err)
	require.Equal(t, 4, m.CurrentLoans)
	require.Equal(t, model.UnderLimit, m.BorrowingStatus)

	requestTestLoan(t, e, "l5", "b5", "m1")
}

func TestDeleteMemberWithActiveLoan(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "1")
	addTestMember(t, e, "m1")
	requestTestLoan(t, e, "l1", "b1", "m1")

	_, err := e.DeleteMember("m1", TagMemberDelete())
	require.True(t, errs.IsViolation(err))

	_, err = e.Member("m1")
	require.NoError(t, err)
}

func TestBookRulesWhileOnLoan(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "1")
	addTestMember(t, e, "m1")
	requestTestLoan(t, e, "l1", "b1", "m1")

	b, err := e.Book("b1")
	require.NoError(t, err)
	b.Title = "Revised edition"
	_, err = e.UpdateBook(b, TagBookModify())
	require.True(t, errs.IsViolation(err))

	_, err = e.DeleteBook("b1", TagBookDelete())
	require.True(t, errs.IsViolation(err))

	// After the return both operations go through.
	_, err = e.ApproveLoan("l1", day0.AddDate(0, 0, 1), TagLoanApprove())
	require.NoError(t, err)
	_, err = e.ReturnLoan("l1", day0.AddDate(0, 0, 2), TagLoanReturn())
	require.NoError(t, err)

	_, err = e.UpdateBook(b, TagBookModify())
	require.NoError(t, err)
	_, err = e.DeleteBook("b1", TagBookDelete())
	require.NoError(t, err)
}

func TestSecondLoanOnUnavailableBook(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "1")
	addTestMember(t, e, "m1")
	addTestMember(t, e, "m2")
	requestTestLoan(t, e, "l1", "b1", "m1")

	_, err := e.RequestLoan(model.Loan{
		ID: "l2", BookID: "b1", MemberID: "m2", RequestDate: day0,
	}, TagLoanRequest())
	require.True(t, errs.IsViolation(err))
}

func TestUpdateMemberBorrowingContradiction(t *testing.T) {
	e := newTestEngine(t)
	addTestMember(t, e, "m1")

	m, err := e.Member("m1")
	require.NoError(t, err)
	m.BorrowingStatus = model.OverLimit
	_, err = e.UpdateMember(m, TagMemberModify())
	require.True(t, errs.IsViolation(err))

	m, err = e.Member("m1")
	require.NoError(t, err)
	require.Equal(t, model.UnderLimit, m.BorrowingStatus)
}

func TestRejectionRecordsStoreError(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ApproveLoan("missing", day0, TagLoanApprove())
	require.True(t, errors.Is(err, errs.ErrNotFound))
	require.NotEmpty(t, e.Snapshot().Errors.Loans)

	// The next committed loan operation clears it.
	addTestBook(t, e, "b1", "1")
	addTestMember(t, e, "m1")
	requestTestLoan(t, e, "l1", "b1", "m1")
	require.Empty(t, e.Snapshot().Errors.Loans)
}

func TestCalendarOperations(t *testing.T) {
	e := newTestEngine(t)

	later := model.CalendarEntry{
		ID:          "c-later",
		Date:        day0.AddDate(0, 1, 0),
		Type:        model.EntryHoliday,
		Description: "inventory week",
	}
	earlier := model.CalendarEntry{
		ID:          "c-earlier",
		Date:        day0.AddDate(0, 0, 3),
		Type:        model.EntryHoliday,
		Description: "public holiday",
	}

	_, err := e.AddCalendarEntry(later, TagCalendarAdd())
	require.NoError(t, err)
	snap, err := e.AddCalendarEntry(earlier, TagCalendarAdd())
	require.NoError(t, err)

	require.Len(t, snap.Calendar.Entries, 2)
	require.Equal(t, "c-earlier", snap.Calendar.Entries[0].ID)
	require.Equal(t, "c-later", snap.Calendar.Entries[1].ID)

	earlier.Description = "public holiday, closed all day"
	snap, err = e.UpdateCalendarEntry(earlier, TagCalendarModify())
	require.NoError(t, err)
	require.Equal(t, "public holiday, closed all day", snap.Calendar.Entries[0].Description)

	snap, err = e.DeleteCalendarEntry("c-later", TagCalendarDelete())
	require.NoError(t, err)
	require.Len(t, snap.Calendar.Entries, 1)

	next := day0.AddDate(0, 0, 7)
	snap, err = e.SetCurrentDate(next, TagCalendarCurrent())
	require.NoError(t, err)
	require.Equal(t, next, snap.Calendar.CurrentDate)
}

func TestCalendarFollowUpIsBestEffort(t *testing.T) {
	// No InitializeCalendar: direct calendar writes are rejected but the
	// primary mutation still commits, with the skip noted on the calendar.
	e := New(Config{}, zap.NewNop(), WithClock(stepClock(day0, 2*time.Second)))

	_, err := e.AddCalendarEntry(model.CalendarEntry{
		ID: "c1", Date: day0, Type: model.EntryHoliday,
	}, TagCalendarAdd())
	require.True(t, errors.Is(err, errs.ErrUninitialized))

	snap, err := e.AddBook(model.Book{ID: "b1", Title: "x", ISBN: "1"}, TagBookPurchase())
	require.NoError(t, err)
	require.Len(t, snap.Books, 1)
	require.Empty(t, snap.Calendar.Entries)
	require.NotEmpty(t, snap.Calendar.Err)
}

func TestRequestWithPresetApprovalSchedulesDueDate(t *testing.T) {
	e := newTestEngine(t)
	addTestBook(t, e, "b1", "1")
	addTestMember(t, e, "m1")

	approval := day0.AddDate(0, 0, 1)
	snap, err := e.RequestLoan(model.Loan{
		ID:           "l1",
		BookID:       "b1",
		MemberID:     "m1",
		RequestDate:  day0,
		ApprovalDate: &approval,
	}, TagLoanRequest())
	require.NoError(t, err)

	due, ok := findEntry(snap.Calendar.Entries, "Loan due for l1")
	require.True(t, ok)
	require.Equal(t, approval.AddDate(0, 0, 14), due.Date)
}
