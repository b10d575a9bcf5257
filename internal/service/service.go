package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ilyakutin/library-engine/internal/engine"
	"github.com/ilyakutin/library-engine/internal/model"
)

// Service is the logged facade over the engine. It builds the canonical
// operation tag for each call; constraint enforcement stays in the engine.
type Service struct {
	log *zap.Logger
	eng *engine.Engine
}

func NewService(eng *engine.Engine, log *zap.Logger) *Service {
	return &Service{
		log: log,
		eng: eng,
	}
}

func (s *Service) AddBook(_ context.Context, req model.AddBookRequest) (model.Book, error) {
	book := model.Book{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		Quantity: req.Quantity,
	}
	if _, err := s.eng.AddBook(book, engine.TagBookPurchase()); err != nil {
		return model.Book{}, err
	}
	return s.eng.Book(book.ID)
}

func (s *Service) UpdateBook(_ context.Context, id string, req model.UpdateBookRequest) (model.Book, error) {
	book := model.Book{
		ID:       id,
		Title:    req.Title,
		Author:   req.Author,
		ISBN:     req.ISBN,
		Quantity: req.Quantity,
	}
	if _, err := s.eng.UpdateBook(book, engine.TagBookModify()); err != nil {
		return model.Book{}, err
	}
	return s.eng.Book(id)
}

func (s *Service) DeleteBook(_ context.Context, id string) error {
	_, err := s.eng.DeleteBook(id, engine.TagBookDelete())
	return err
}

func (s *Service) GetBook(_ context.Context, id string) (model.Book, error) {
	return s.eng.Book(id)
}

func (s *Service) ListBooks(_ context.Context) ([]model.Book, error) {
	return s.eng.Books(), nil
}

func (s *Service) AddMember(_ context.Context, req model.AddMemberRequest) (model.Member, error) {
	member := model.Member{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if _, err := s.eng.AddMember(member, engine.TagMemberAdd()); err != nil {
		return model.Member{}, err
	}
	return s.eng.Member(member.ID)
}

func (s *Service) UpdateMember(_ context.Context, id string, req model.UpdateMemberRequest) (model.Member, error) {
	cur, err := s.eng.Member(id)
	if err != nil {
		return model.Member{}, err
	}
	member := cur
	member.Name = req.Name
	member.Email = req.Email
	member.Phone = req.Phone
	if req.Status != "" {
		member.Status = req.Status
	}
	if req.BorrowingStatus != "" {
		member.BorrowingStatus = req.BorrowingStatus
	}
	if _, err := s.eng.UpdateMember(member, engine.TagMemberModify()); err != nil {
		return model.Member{}, err
	}
	return s.eng.Member(id)
}

func (s *Service) DeleteMember(_ context.Context, id string) error {
	_, err := s.eng.DeleteMember(id, engine.TagMemberDelete())
	return err
}

func (s *Service) GetMember(_ context.Context, id string) (model.Member, error) {
	return s.eng.Member(id)
}

func (s *Service) ListMembers(_ context.Context) ([]model.Member, error) {
	return s.eng.Members(), nil
}

func (s *Service) RequestLoan(_ context.Context, req model.CreateLoanRequest) (model.Loan, error) {
	loan := model.Loan{
		ID:           uuid.NewString(),
		BookID:       req.BookID,
		MemberID:     req.MemberID,
		RequestDate:  req.RequestDate,
		ApprovalDate: req.ApprovalDate,
	}
	if _, err := s.eng.RequestLoan(loan, engine.TagLoanRequest()); err != nil {
		return model.Loan{}, err
	}
	return s.eng.Loan(loan.ID)
}

func (s *Service) ApproveLoan(_ context.Context, id string, approvalDate time.Time) (model.Loan, error) {
	if _, err := s.eng.ApproveLoan(id, approvalDate, engine.TagLoanApprove()); err != nil {
		return model.Loan{}, err
	}
	return s.eng.Loan(id)
}

func (s *Service) ReturnLoan(_ context.Context, id string, returnDate time.Time) (model.Loan, error) {
	if _, err := s.eng.ReturnLoan(id, returnDate, engine.TagLoanReturn()); err != nil {
		return model.Loan{}, err
	}
	return s.eng.Loan(id)
}

func (s *Service) MarkOverdue(_ context.Context, id string) (model.Loan, error) {
	if _, err := s.eng.MarkOverdue(id, engine.TagLoanOverdue()); err != nil {
		return model.Loan{}, err
	}
	return s.eng.Loan(id)
}

func (s *Service) DeleteLoan(_ context.Context, id string) error {
	_, err := s.eng.DeleteLoan(id, engine.TagLoanDelete())
	return err
}

func (s *Service) GetLoan(_ context.Context, id string) (model.Loan, error) {
	return s.eng.Loan(id)
}

func (s *Service) ListLoans(_ context.Context) ([]model.Loan, error) {
	return s.eng.Loans(), nil
}

func (s *Service) InitializeCalendar(_ context.Context) (model.CalendarView, error) {
	snap := s.eng.InitializeCalendar()
	return snap.Calendar, nil
}

func (s *Service) GetCalendar(_ context.Context) (model.CalendarView, error) {
	return s.eng.Calendar(), nil
}

func (s *Service) AddCalendarEntry(_ context.Context, req model.CalendarEntryRequest) (model.CalendarView, error) {
	entry := model.CalendarEntry{
		ID:               uuid.NewString(),
		Date:             req.Date,
		Type:             req.Type,
		Description:      req.Description,
		AffectedServices: req.AffectedServices,
	}
	snap, err := s.eng.AddCalendarEntry(entry, engine.TagCalendarAdd())
	if err != nil {
		return model.CalendarView{}, err
	}
	return snap.Calendar, nil
}

func (s *Service) UpdateCalendarEntry(_ context.Context, id string, req model.CalendarEntryRequest) (model.CalendarView, error) {
	entry := model.CalendarEntry{
		ID:               id,
		Date:             req.Date,
		Type:             req.Type,
		Description:      req.Description,
		AffectedServices: req.AffectedServices,
	}
	snap, err := s.eng.UpdateCalendarEntry(entry, engine.TagCalendarModify())
	if err != nil {
		return model.CalendarView{}, err
	}
	return snap.Calendar, nil
}

func (s *Service) DeleteCalendarEntry(_ context.Context, id string) (model.CalendarView, error) {
	snap, err := s.eng.DeleteCalendarEntry(id, engine.TagCalendarDelete())
	if err != nil {
		return model.CalendarView{}, err
	}
	return snap.Calendar, nil
}

func (s *Service) SetCurrentDate(_ context.Context, date time.Time) (model.CalendarView, error) {
	snap, err := s.eng.SetCurrentDate(date, engine.TagCalendarCurrent())
	if err != nil {
		return model.CalendarView{}, err
	}
	return snap.Calendar, nil
}

func (s *Service) Snapshot(_ context.Context) (model.Snapshot, error) {
	return s.eng.Snapshot(), nil
}
