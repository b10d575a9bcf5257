package engine

import (
	"github.com/pkg/errors"

	"github.com/ilyakutin/library-engine/internal/chart"
	"github.com/ilyakutin/library-engine/internal/errs"
	"github.com/ilyakutin/library-engine/internal/model"
)

// checkChart verifies the mutation's tag resolves to a permitted edge.
// Fails closed: an operation the table does not know is rejected.
func checkChart(m mutation) error {
	op, source, target := m.chartEdge()
	tag := m.tag()
	if tag.Name != op {
		return errors.Wrapf(errs.ErrOperationTag, "tag %q on %q mutation", tag.Name, op)
	}
	tr, ok := chart.Lookup(op, source, target)
	if !ok {
		return errors.Wrapf(errs.ErrChart, "%s: %s -> %s", op, source, target)
	}
	if tr.Type != tag.Type {
		return errors.Wrapf(errs.ErrOperationTag, "%s wants %s, tag says %s", op, tr.Type, tag.Type)
	}
	return nil
}

// validate runs every cross-entity precondition against the full aggregate
// snapshot. All rules live here, once; stores never re-check them.
func (e *Engine) validate(st *State, m mutation) error {
	switch m := m.(type) {
	case addBook:
		for _, b := range st.Books.Items {
			if b.ISBN == m.book.ISBN {
				return errs.NewViolation("lib17", "book with ISBN %q already exists", m.book.ISBN)
			}
		}

	case updateBook:
		b, ok := st.Books.Get(m.book.ID)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "book")
		}
		if b.CurrentStatus == model.BookOnLoan || st.Loans.ActiveOnBook(b.ID) {
			return errs.NewViolation("lib18", "cannot modify book that is currently on loan")
		}

	case deleteBook:
		b, ok := st.Books.Get(m.id)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "book")
		}
		if st.Loans.ActiveOnBook(b.ID) {
			return errs.NewViolation("lib19", "cannot delete book with active loans")
		}
		if !b.Available {
			return errs.NewViolation("lib21", "cannot delete book that is not available")
		}

	case setAvailability:
		b, ok := st.Books.Get(m.bookID)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "book")
		}
		// The inversion must agree with the loans actually outstanding.
		active := st.Loans.ActiveOnBook(b.ID)
		if !m.available && !active {
			return errs.NewViolation("lib07", "cannot mark book unavailable without an active loan")
		}
		if m.available && active {
			return errs.NewViolation("lib07", "cannot mark book available with an active loan")
		}

	case addMember:
		if m.member.BorrowingStatus != "" && m.member.BorrowingStatus != model.UnderLimit {
			return errs.NewViolation("lib32", "new members must start under the loan limit")
		}

	case updateMember:
		cur, ok := st.Members.Get(m.member.ID)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "member")
		}
		if m.member.BorrowingStatus != cur.BorrowingStatus {
			active := st.Loans.ActiveCount(cur.ID)
			if m.member.BorrowingStatus == model.UnderLimit && active >= e.cfg.MaxLoansPerMember {
				return errs.NewViolation("lib30", "member with %d active loans cannot be under limit", active)
			}
			if m.member.BorrowingStatus == model.OverLimit && active < e.cfg.MaxLoansPerMember {
				return errs.NewViolation("lib31", "member with %d active loans cannot be over limit", active)
			}
		}

	case deleteMember:
		if _, ok := st.Members.Get(m.id); !ok {
			return errors.Wrap(errs.ErrNotFound, "member")
		}
		if n := st.Loans.ActiveCount(m.id); n > 0 {
			return errs.NewViolation("lib14", "cannot delete member with %d active loans", n)
		}

	case adjustBorrowing:
		if _, ok := st.Members.Get(m.memberID); !ok {
			return errors.Wrap(errs.ErrNotFound, "member")
		}

	case addLoan:
		b, ok := st.Books.Get(m.loan.BookID)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "book")
		}
		if !b.Available {
			return errs.NewViolation("lib20", "book is not available for loan")
		}
		mem, ok := st.Members.Get(m.loan.MemberID)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "member")
		}
		if mem.BorrowingStatus != model.UnderLimit {
			return errs.NewViolation("lib03", "member is over loan limit and not permitted to request loans")
		}
		if st.Loans.ActiveCount(mem.ID) >= e.cfg.MaxLoansPerMember {
			return errs.NewViolation("lib33", "member has reached the maximum of %d loans", e.cfg.MaxLoansPerMember)
		}

	case approveLoan:
		l, ok := st.Loans.Get(m.id)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "loan")
		}
		if l.Status != model.LoanRequested {
			return errs.NewViolation("lib04", "only requested loans can be approved")
		}
		if m.approvalDate.IsZero() {
			return errs.NewViolation("lib27", "approval date is required")
		}

	case returnLoan:
		l, ok := st.Loans.Get(m.id)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "loan")
		}
		if l.Status != model.LoanCurrent && l.Status != model.LoanOverdue {
			return errs.NewViolation("lib05", "only approved or overdue loans can be returned")
		}
		if m.returnDate.IsZero() {
			return errs.NewViolation("lib05", "return date is required")
		}

	case markOverdue:
		l, ok := st.Loans.Get(m.id)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "loan")
		}
		if l.Status != model.LoanCurrent {
			return errs.NewViolation("lib26", "only approved loans can become overdue")
		}

	case deleteLoan:
		l, ok := st.Loans.Get(m.id)
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "loan")
		}
		if l.Status != model.LoanReturned {
			return errs.NewViolation("lib25", "only returned loans can be deleted")
		}

	case modifyTotal, deleteTotal:
		// Existence is checked by the store; no cross-entity rules.
	}
	return nil
}
