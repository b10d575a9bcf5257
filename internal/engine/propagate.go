package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ilyakutin/library-engine/internal/chart"
	"github.com/ilyakutin/library-engine/internal/model"
)

// propagate derives the follow-up mutations a committed mutation requires,
// in apply order. Follow-ups run through the same chart/validate/apply
// pipeline; none of them produces further follow-ups, so cascades terminate
// by construction.
func (e *Engine) propagate(st *State, m mutation, now time.Time) []mutation {
	switch m := m.(type) {
	case addBook:
		return []mutation{e.maintenanceEntry(m.book.ID, now)}

	case addLoan:
		// Requesting a loan ties the book up immediately (lib07).
		out := []mutation{e.invertAvailability(m.loan.BookID, false)}
		if m.loan.ApprovalDate != nil {
			out = append(out, e.dueDateEntry(m.loan.ID, m.loan.ApprovalDate.Add(e.loanPeriod()), "loans", "returns"))
		}
		return out

	case approveLoan:
		l, ok := st.Loans.Get(m.id)
		if !ok {
			return nil
		}
		out := []mutation{
			e.borrowingDelta(st, l.MemberID, +1, true, now),
			e.totalDelta(st, l.MemberID, +1, now),
			e.dueDateEntry(l.ID, m.approvalDate.Add(e.loanPeriod()), "loans", "returns"),
		}
		return out

	case returnLoan:
		l, ok := st.Loans.Get(m.id)
		if !ok {
			return nil
		}
		out := []mutation{
			e.invertAvailability(l.BookID, true),
			e.borrowingDelta(st, l.MemberID, -1, false, now),
		}
		if t := e.totalDelta(st, l.MemberID, -1, now); t != nil {
			out = append(out, t)
		}
		out = append(out, addCalendarEntry{
			op: TagCalendarAdd(),
			entry: model.CalendarEntry{
				ID:               uuid.NewString(),
				Date:             m.returnDate,
				Type:             model.EntryDueDate,
				Description:      fmt.Sprintf("Loan returned for %s", l.ID),
				AffectedServices: []string{"returns"},
			},
		})
		return out
	}
	return nil
}

func (e *Engine) invertAvailability(bookID string, available bool) mutation {
	return setAvailability{
		op:        model.Operation{Type: model.OpInversion, Name: model.OpBookAvailable, ConstraintID: "lib07"},
		bookID:    bookID,
		available: available,
	}
}

func (e *Engine) borrowingDelta(st *State, memberID string, delta int, lifetime bool, now time.Time) mutation {
	next := delta
	if mem, ok := st.Members.Get(memberID); ok {
		next = mem.CurrentLoans + delta
	}
	target := chart.StateMemberUnder
	cid := "lib30"
	if next >= e.cfg.MaxLoansPerMember {
		target = chart.StateMemberOver
		cid = "lib31"
	}
	return adjustBorrowing{
		op:       model.Operation{Type: model.OpNormal, Name: model.OpMemberBorrowing, ConstraintID: cid},
		memberID: memberID,
		delta:    delta,
		lifetime: lifetime,
		cap:      e.cfg.MaxLoansPerMember,
		target:   target,
		now:      now,
	}
}

// totalDelta picks the aggregate mutation: create on first count, delete
// once the count would reach zero, amend otherwise.
func (e *Engine) totalDelta(st *State, memberID string, delta int, now time.Time) mutation {
	rec, ok := st.Totals.Get(memberID)
	if !ok {
		if delta <= 0 {
			return nil
		}
		return addTotal{
			op:       model.Operation{Type: model.OpInsertion, Name: model.OpTotalLoansAdd, ConstraintID: "lib36"},
			memberID: memberID,
			now:      now,
		}
	}
	if rec.Count+delta <= 0 {
		return deleteTotal{
			op:       model.Operation{Type: model.OpDeletion, Name: model.OpTotalLoansDelete, ConstraintID: "lib38"},
			memberID: memberID,
		}
	}
	return modifyTotal{
		op:       model.Operation{Type: model.OpAmendment, Name: model.OpTotalLoansModify, ConstraintID: "lib37"},
		memberID: memberID,
		delta:    delta,
		now:      now,
	}
}

func (e *Engine) dueDateEntry(loanID string, due time.Time, services ...string) mutation {
	return addCalendarEntry{
		op: TagCalendarAdd(),
		entry: model.CalendarEntry{
			ID:               uuid.NewString(),
			Date:             due,
			Type:             model.EntryDueDate,
			Description:      fmt.Sprintf("Loan due for %s", loanID),
			AffectedServices: services,
		},
	}
}

func (e *Engine) maintenanceEntry(bookID string, now time.Time) mutation {
	return addCalendarEntry{
		op: TagCalendarAdd(),
		entry: model.CalendarEntry{
			ID:               uuid.NewString(),
			Date:             now,
			Type:             model.EntryMaintenance,
			Description:      fmt.Sprintf("Book added: %s", bookID),
			AffectedServices: []string{"books"},
		},
	}
}

func (e *Engine) loanPeriod() time.Duration {
	return time.Duration(e.cfg.LoanPeriodDays) * 24 * time.Hour
}
