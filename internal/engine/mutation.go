package engine

import (
	"time"

	"github.com/ilyakutin/library-engine/internal/chart"
	"github.com/ilyakutin/library-engine/internal/model"
)

// mutation is one intended state change flowing through the pipeline.
// External requests and propagated follow-ups are the same kind of value;
// both are chart-checked, validated and applied identically.
type mutation interface {
	// tag is the operation metadata attached to the request.
	tag() model.Operation
	// chartEdge names the (operation, sourceState, targetState) edge this
	// mutation claims to exercise.
	chartEdge() (op, source, target string)
}

type addBook struct {
	op   model.Operation
	book model.Book
}

func (m addBook) tag() model.Operation { return m.op }
func (m addBook) chartEdge() (string, string, string) {
	return model.OpBookPurchase, model.OpBookPurchase, chart.StateBookCurrent
}

type updateBook struct {
	op   model.Operation
	book model.Book
}

func (m updateBook) tag() model.Operation { return m.op }
func (m updateBook) chartEdge() (string, string, string) {
	return model.OpBookModify, model.OpBookModify, chart.StateBookCurrent
}

type deleteBook struct {
	op model.Operation
	id string
}

func (m deleteBook) tag() model.Operation { return m.op }
func (m deleteBook) chartEdge() (string, string, string) {
	return model.OpBookDelete, model.OpBookDelete, chart.StateBookCurrent
}

// setAvailability is the propagation-only availability inversion (lib07).
type setAvailability struct {
	op        model.Operation
	bookID    string
	available bool
}

func (m setAvailability) tag() model.Operation { return m.op }
func (m setAvailability) chartEdge() (string, string, string) {
	return model.OpBookAvailable, chart.StateLoanApproved, chart.StateBookAvailable
}

type addMember struct {
	op     model.Operation
	member model.Member
}

func (m addMember) tag() model.Operation { return m.op }
func (m addMember) chartEdge() (string, string, string) {
	return model.OpMemberAdd, model.OpMemberAdd, chart.StateMemberCurrent
}

type updateMember struct {
	op     model.Operation
	member model.Member
}

func (m updateMember) tag() model.Operation { return m.op }
func (m updateMember) chartEdge() (string, string, string) {
	return model.OpMemberModify, model.OpMemberModify, chart.StateMemberCurrent
}

type deleteMember struct {
	op model.Operation
	id string
}

func (m deleteMember) tag() model.Operation { return m.op }
func (m deleteMember) chartEdge() (string, string, string) {
	return model.OpMemberDelete, model.OpMemberDelete, chart.StateMemberCurrent
}

// adjustBorrowing moves a member's current-loan counter and recomputes the
// borrowing status against the cap. Propagation-only.
type adjustBorrowing struct {
	op       model.Operation
	memberID string
	delta    int
	lifetime bool // approval also bumps the member's lifetime counter
	cap      int
	target   string // chart.StateMemberUnder or chart.StateMemberOver
	now      time.Time
}

func (m adjustBorrowing) tag() model.Operation { return m.op }
func (m adjustBorrowing) chartEdge() (string, string, string) {
	return model.OpMemberBorrowing, model.OpMemberBorrowing, m.target
}

type addLoan struct {
	op   model.Operation
	loan model.Loan
}

func (m addLoan) tag() model.Operation { return m.op }
func (m addLoan) chartEdge() (string, string, string) {
	return model.OpLoanRequest, model.OpLoanRequest, chart.StateLoanApproved
}

type approveLoan struct {
	op           model.Operation
	id           string
	approvalDate time.Time
}

func (m approveLoan) tag() model.Operation { return m.op }
func (m approveLoan) chartEdge() (string, string, string) {
	return model.OpLoanApproved, chart.StateLoanApproved, chart.StateLoanCurrent
}

type returnLoan struct {
	op         model.Operation
	id         string
	returnDate time.Time
}

func (m returnLoan) tag() model.Operation { return m.op }
func (m returnLoan) chartEdge() (string, string, string) {
	return model.OpLoanApproved, chart.StateLoanApproved, chart.StateLoanReturned
}

type markOverdue struct {
	op model.Operation
	id string
}

func (m markOverdue) tag() model.Operation { return m.op }
func (m markOverdue) chartEdge() (string, string, string) {
	return model.OpLoanOverdue, chart.StateLoanCurrent, model.OpLoanOverdue
}

type deleteLoan struct {
	op model.Operation
	id string
}

func (m deleteLoan) tag() model.Operation { return m.op }
func (m deleteLoan) chartEdge() (string, string, string) {
	return model.OpLoanDelete, chart.StateLoanReturned, chart.StateLoanCurrent
}

type addTotal struct {
	op       model.Operation
	memberID string
	now      time.Time
}

func (m addTotal) tag() model.Operation { return m.op }
func (m addTotal) chartEdge() (string, string, string) {
	return model.OpTotalLoansAdd, model.OpTotalLoansAdd, chart.StateTotalCurrent
}

type modifyTotal struct {
	op       model.Operation
	memberID string
	delta    int
	now      time.Time
}

func (m modifyTotal) tag() model.Operation { return m.op }
func (m modifyTotal) chartEdge() (string, string, string) {
	return model.OpTotalLoansModify, model.OpTotalLoansModify, chart.StateTotalCurrent
}

type deleteTotal struct {
	op       model.Operation
	memberID string
}

func (m deleteTotal) tag() model.Operation { return m.op }
func (m deleteTotal) chartEdge() (string, string, string) {
	return model.OpTotalLoansDelete, model.OpTotalLoansDelete, chart.StateTotalCurrent
}

type addCalendarEntry struct {
	op    model.Operation
	entry model.CalendarEntry
}

func (m addCalendarEntry) tag() model.Operation { return m.op }
func (m addCalendarEntry) chartEdge() (string, string, string) {
	return model.OpCalendarAdd, model.OpCalendarAdd, chart.StateCalendar
}

type updateCalendarEntry struct {
	op    model.Operation
	entry model.CalendarEntry
}

func (m updateCalendarEntry) tag() model.Operation { return m.op }
func (m updateCalendarEntry) chartEdge() (string, string, string) {
	return model.OpCalendarModify, model.OpCalendarModify, chart.StateCalendar
}

type deleteCalendarEntry struct {
	op model.Operation
	id string
}

func (m deleteCalendarEntry) tag() model.Operation { return m.op }
func (m deleteCalendarEntry) chartEdge() (string, string, string) {
	return model.OpCalendarDelete, model.OpCalendarDelete, chart.StateCalendar
}

type setCurrentDate struct {
	op   model.Operation
	date time.Time
}

func (m setCurrentDate) tag() model.Operation { return m.op }
func (m setCurrentDate) chartEdge() (string, string, string) {
	return model.OpCalendarCurrent, model.OpCalendarCurrent, chart.StateCalendar
}

func isCalendarMutation(m mutation) bool {
	switch m.(type) {
	case addCalendarEntry, updateCalendarEntry, deleteCalendarEntry, setCurrentDate:
		return true
	}
	return false
}
