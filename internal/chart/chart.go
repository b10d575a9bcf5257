// Package chart holds the static table of legal operation transitions.
// Every mutation is checked against it before touching a store; an
// operation the table does not know is rejected, never silently allowed.
package chart

import (
	"github.com/ilyakutin/library-engine/internal/model"
)

// Transition is one permitted (operation, source state, target state) edge
// with its constraint id.
type Transition struct {
	Type         model.OpType
	SourceState  string
	TargetState  string
	ConstraintID string
}

// Conceptual states referenced by the table.
const (
	StateBookCurrent   = "book_current"
	StateBookAvailable = "book_available"
	StateLoanApproved  = "loan_approved"
	StateLoanReturned  = "loan_returned"
	StateLoanCurrent   = "loan_current"
	StateMemberCurrent = "member_current"
	StateMemberUnder   = "member_under"
	StateMemberOver    = "member_over"
	StateTotalCurrent  = "total_loans_current"
	StateCalendar      = "sys_calendar_current"
)

var table = map[string][]Transition{
	model.OpBookPurchase: {
		{Type: model.OpInsertion, SourceState: model.OpBookPurchase, TargetState: StateBookCurrent, ConstraintID: "lib01"},
	},
	model.OpBookModify: {
		{Type: model.OpAmendment, SourceState: model.OpBookModify, TargetState: StateBookCurrent, ConstraintID: "lib15"},
	},
	model.OpBookDelete: {
		{Type: model.OpDeletion, SourceState: model.OpBookDelete, TargetState: StateBookCurrent, ConstraintID: "lib16"},
	},

	model.OpLoanRequest: {
		{Type: model.OpInsertion, SourceState: model.OpLoanRequest, TargetState: StateLoanApproved, ConstraintID: "lib04"},
	},
	model.OpLoanApproved: {
		{Type: model.OpReadOnly, SourceState: StateLoanApproved, TargetState: StateLoanReturned, ConstraintID: "lib05"},
		{Type: model.OpInversion, SourceState: StateLoanApproved, TargetState: StateBookAvailable, ConstraintID: "lib07"},
		{Type: model.OpNormal, SourceState: StateLoanApproved, TargetState: StateLoanCurrent, ConstraintID: "lib27"},
	},
	model.OpLoanReturned: {
		{Type: model.OpDeletion, SourceState: StateLoanReturned, TargetState: StateLoanApproved, ConstraintID: "lib06"},
	},
	model.OpLoanOverdue: {
		{Type: model.OpNormal, SourceState: StateLoanCurrent, TargetState: model.OpLoanOverdue, ConstraintID: "lib26"},
	},
	model.OpLoanDelete: {
		{Type: model.OpDeletion, SourceState: StateLoanReturned, TargetState: StateLoanCurrent, ConstraintID: "lib25"},
	},

	model.OpMemberAdd: {
		{Type: model.OpInsertion, SourceState: model.OpMemberAdd, TargetState: StateMemberCurrent, ConstraintID: "lib10"},
	},
	model.OpMemberModify: {
		{Type: model.OpAmendment, SourceState: model.OpMemberModify, TargetState: StateMemberCurrent, ConstraintID: "lib09"},
	},
	model.OpMemberDelete: {
		{Type: model.OpDeletion, SourceState: model.OpMemberDelete, TargetState: StateMemberCurrent, ConstraintID: "lib08"},
	},
	model.OpMemberBorrowing: {
		{Type: model.OpNormal, SourceState: model.OpMemberBorrowing, TargetState: StateMemberUnder, ConstraintID: "lib30"},
		{Type: model.OpNormal, SourceState: model.OpMemberBorrowing, TargetState: StateMemberOver, ConstraintID: "lib31"},
	},

	model.OpBookAvailable: {
		{Type: model.OpInversion, SourceState: StateLoanApproved, TargetState: StateBookAvailable, ConstraintID: "lib07"},
	},

	model.OpTotalLoansAdd: {
		{Type: model.OpInsertion, SourceState: model.OpTotalLoansAdd, TargetState: StateTotalCurrent, ConstraintID: "lib36"},
	},
	model.OpTotalLoansModify: {
		{Type: model.OpAmendment, SourceState: model.OpTotalLoansModify, TargetState: StateTotalCurrent, ConstraintID: "lib37"},
	},
	model.OpTotalLoansDelete: {
		{Type: model.OpDeletion, SourceState: model.OpTotalLoansDelete, TargetState: StateTotalCurrent, ConstraintID: "lib38"},
	},

	model.OpCalendarAdd: {
		{Type: model.OpInsertion, SourceState: model.OpCalendarAdd, TargetState: StateCalendar, ConstraintID: "lib45"},
	},
	model.OpCalendarModify: {
		{Type: model.OpAmendment, SourceState: model.OpCalendarModify, TargetState: StateCalendar, ConstraintID: "lib46"},
	},
	model.OpCalendarDelete: {
		{Type: model.OpDeletion, SourceState: model.OpCalendarDelete, TargetState: StateCalendar, ConstraintID: "lib47"},
	},
	model.OpCalendarCurrent: {
		{Type: model.OpReadOnly, SourceState: model.OpCalendarCurrent, TargetState: StateCalendar, ConstraintID: "lib42"},
	},
}

// Lookup returns the transition for (operation, sourceState, targetState),
// or false when the edge is not in the table.
func Lookup(operation, sourceState, targetState string) (Transition, bool) {
	for _, tr := range table[operation] {
		if tr.SourceState == sourceState && tr.TargetState == targetState {
			return tr, true
		}
	}
	return Transition{}, false
}

// Known reports whether the operation name appears in the table at all.
func Known(operation string) bool {
	_, ok := table[operation]
	return ok
}

// Transitions returns the permitted edges for an operation name.
func Transitions(operation string) []Transition {
	return table[operation]
}
