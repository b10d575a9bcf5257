package engine

import (
	"github.com/ilyakutin/library-engine/internal/model"
)

// Canonical operation tags for external callers. A caller may build its own
// tag; anything that does not resolve to a chart edge is rejected.

func TagBookPurchase() model.Operation {
	return model.Operation{Type: model.OpInsertion, Name: model.OpBookPurchase, ConstraintID: "lib01"}
}

func TagBookModify() model.Operation {
	return model.Operation{Type: model.OpAmendment, Name: model.OpBookModify, ConstraintID: "lib15"}
}

func TagBookDelete() model.Operation {
	return model.Operation{Type: model.OpDeletion, Name: model.OpBookDelete, ConstraintID: "lib16"}
}

func TagMemberAdd() model.Operation {
	return model.Operation{Type: model.OpInsertion, Name: model.OpMemberAdd, ConstraintID: "lib10"}
}

func TagMemberModify() model.Operation {
	return model.Operation{Type: model.OpAmendment, Name: model.OpMemberModify, ConstraintID: "lib09"}
}

func TagMemberDelete() model.Operation {
	return model.Operation{Type: model.OpDeletion, Name: model.OpMemberDelete, ConstraintID: "lib08"}
}

func TagLoanRequest() model.Operation {
	return model.Operation{Type: model.OpInsertion, Name: model.OpLoanRequest, ConstraintID: "lib04"}
}

// TagLoanApprove names the loan_approved -> loan_current transition.
func TagLoanApprove() model.Operation {
	return model.Operation{Type: model.OpNormal, Name: model.OpLoanApproved, ConstraintID: "lib27"}
}

// TagLoanReturn names the loan_approved -> loan_returned transition.
func TagLoanReturn() model.Operation {
	return model.Operation{Type: model.OpReadOnly, Name: model.OpLoanApproved, ConstraintID: "lib05"}
}

func TagLoanOverdue() model.Operation {
	return model.Operation{Type: model.OpNormal, Name: model.OpLoanOverdue, ConstraintID: "lib26"}
}

func TagLoanDelete() model.Operation {
	return model.Operation{Type: model.OpDeletion, Name: model.OpLoanDelete, ConstraintID: "lib25"}
}

func TagCalendarAdd() model.Operation {
	return model.Operation{Type: model.OpInsertion, Name: model.OpCalendarAdd, ConstraintID: "lib45"}
}

func TagCalendarModify() model.Operation {
	return model.Operation{Type: model.OpAmendment, Name: model.OpCalendarModify, ConstraintID: "lib46"}
}

func TagCalendarDelete() model.Operation {
	return model.Operation{Type: model.OpDeletion, Name: model.OpCalendarDelete, ConstraintID: "lib47"}
}

func TagCalendarCurrent() model.Operation {
	return model.Operation{Type: model.OpReadOnly, Name: model.OpCalendarCurrent, ConstraintID: "lib42"}
}
