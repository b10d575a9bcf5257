package model

import (
	"time"
)

// OpType classifies a mutation the way the chart does.
type OpType string

const (
	OpInsertion OpType = "insertion"
	OpDeletion  OpType = "deletion"
	OpAmendment OpType = "amendment"
	OpReadOnly  OpType = "read-only"
	OpInversion OpType = "inversion"
	OpNormal    OpType = "normal"
)

// Operation is the tag attached to every mutation request. It is metadata
// cross-checked against the chart before committing, not domain state.
type Operation struct {
	Type         OpType `json:"type"`
	Name         string `json:"name"`
	ConstraintID string `json:"constraintId"`
}

// Operation names known to the chart.
const (
	OpBookPurchase  = "book_purchase"
	OpBookModify    = "book_modify"
	OpBookDelete    = "book_delete"
	OpBookAvailable = "book_available"

	OpLoanRequest  = "loan_request"
	OpLoanApproved = "loan_approved"
	OpLoanReturned = "loan_returned"
	OpLoanOverdue  = "loan_overdue"
	OpLoanDelete   = "loan_delete"

	OpMemberAdd       = "member_add"
	OpMemberModify    = "member_modify"
	OpMemberDelete    = "member_delete"
	OpMemberBorrowing = "member_borrowing"

	OpTotalLoansAdd    = "total_loans_add"
	OpTotalLoansModify = "total_loans_modify"
	OpTotalLoansDelete = "total_loans_delete"

	OpCalendarAdd     = "sys_calendar_add"
	OpCalendarModify  = "sys_calendar_modify"
	OpCalendarDelete  = "sys_calendar_delete"
	OpCalendarCurrent = "sys_calendar_current"
)

type BookStatus string

const (
	BookAvailable   BookStatus = "available"
	BookUnavailable BookStatus = "unavailable"
	BookOnLoan      BookStatus = "on_loan"
)

type Book struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	ISBN          string     `json:"isbn"`
	Quantity      int        `json:"quantity"`
	Available     bool       `json:"available"`
	CurrentStatus BookStatus `json:"currentStatus"`
}

type MemberStatus string

const (
	MemberPermitted  MemberStatus = "permitted"
	MemberRestricted MemberStatus = "restricted"
	MemberSuspended  MemberStatus = "suspended"
)

type BorrowingStatus string

const (
	UnderLimit BorrowingStatus = "under_limit"
	OverLimit  BorrowingStatus = "over_limit"
)

type Member struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Status          MemberStatus    `json:"status"`
	BorrowingStatus BorrowingStatus `json:"borrowingStatus"`
	TotalLoans      int             `json:"totalLoans"`
	CurrentLoans    int             `json:"currentLoans"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type LoanStatus string

// Loan lifecycle: requested -> current -> returned, overdue reachable from
// current. "approved" is the name of the requested->current transition, not
// a resting status.
const (
	LoanRequested LoanStatus = "requested"
	LoanCurrent   LoanStatus = "current"
	LoanReturned  LoanStatus = "returned"
	LoanOverdue   LoanStatus = "overdue"
)

type Loan struct {
	ID           string     `json:"id"`
	BookID       string     `json:"bookId"`
	MemberID     string     `json:"memberId"`
	RequestDate  time.Time  `json:"requestDate"`
	ApprovalDate *time.Time `json:"approvalDate,omitempty"`
	ReturnDate   *time.Time `json:"returnDate,omitempty"`
	Status       LoanStatus `json:"status"`
}

// Active reports whether the loan still ties up the book and counts against
// the member's limit.
func (l Loan) Active() bool {
	return l.Status == LoanRequested || l.Status == LoanCurrent || l.Status == LoanOverdue
}

type EntryType string

const (
	EntryDueDate     EntryType = "due_date"
	EntryHoliday     EntryType = "holiday"
	EntryMaintenance EntryType = "system_maintenance"
)

type CalendarEntry struct {
	ID               string     `json:"id"`
	Date             time.Time  `json:"date"`
	Type             EntryType  `json:"type"`
	Description      string     `json:"description"`
	AffectedServices []string   `json:"affectedServices,omitempty"`
	Operation        *Operation `json:"operation,omitempty"`
}

// TotalLoans is the per-member aggregate of currently counted loans. One
// record per member with ever-active loans; deleted once the count drops
// to zero.
type TotalLoans struct {
	ID          string    `json:"id"`
	MemberID    string    `json:"memberId"`
	Count       int       `json:"count"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type CalendarView struct {
	Initialized   bool            `json:"initialized"`
	CurrentDate   time.Time       `json:"currentDate"`
	LastModified  time.Time       `json:"lastModified"`
	LastOperation *Operation      `json:"lastOperation,omitempty"`
	Entries       []CalendarEntry `json:"entries"`
	Err           string          `json:"error,omitempty"`
}

// Snapshot is the full aggregate state handed back to callers after a
// committed mutation.
type Snapshot struct {
	Books      []Book       `json:"books"`
	Members    []Member     `json:"members"`
	Loans      []Loan       `json:"loans"`
	TotalLoans []TotalLoans `json:"totalLoans"`
	Calendar   CalendarView `json:"calendar"`
	Errors     StoreErrors  `json:"errors"`
}

// StoreErrors carries each store's last-operation-error for diagnostics.
type StoreErrors struct {
	Books      string `json:"books,omitempty"`
	Members    string `json:"members,omitempty"`
	Loans      string `json:"loans,omitempty"`
	TotalLoans string `json:"totalLoans,omitempty"`
	Calendar   string `json:"calendar,omitempty"`
}
