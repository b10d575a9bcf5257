package handler

import (
	"context"
	"time"

	"github.com/ilyakutin/library-engine/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=mocks

// LibraryService is everything the HTTP surface needs from the engine.
type LibraryService interface {
	AddBook(ctx context.Context, req model.AddBookRequest) (model.Book, error)
	UpdateBook(ctx context.Context, id string, req model.UpdateBookRequest) (model.Book, error)
	DeleteBook(ctx context.Context, id string) error
	GetBook(ctx context.Context, id string) (model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)

	AddMember(ctx context.Context, req model.AddMemberRequest) (model.Member, error)
	UpdateMember(ctx context.Context, id string, req model.UpdateMemberRequest) (model.Member, error)
	DeleteMember(ctx context.Context, id string) error
	GetMember(ctx context.Context, id string) (model.Member, error)
	ListMembers(ctx context.Context) ([]model.Member, error)

	RequestLoan(ctx context.Context, req model.CreateLoanRequest) (model.Loan, error)
	ApproveLoan(ctx context.Context, id string, approvalDate time.Time) (model.Loan, error)
	ReturnLoan(ctx context.Context, id string, returnDate time.Time) (model.Loan, error)
	MarkOverdue(ctx context.Context, id string) (model.Loan, error)
	DeleteLoan(ctx context.Context, id string) error
	GetLoan(ctx context.Context, id string) (model.Loan, error)
	ListLoans(ctx context.Context) ([]model.Loan, error)

	InitializeCalendar(ctx context.Context) (model.CalendarView, error)
	GetCalendar(ctx context.Context) (model.CalendarView, error)
	AddCalendarEntry(ctx context.Context, req model.CalendarEntryRequest) (model.CalendarView, error)
	UpdateCalendarEntry(ctx context.Context, id string, req model.CalendarEntryRequest) (model.CalendarView, error)
	DeleteCalendarEntry(ctx context.Context, id string) (model.CalendarView, error)
	SetCurrentDate(ctx context.Context, date time.Time) (model.CalendarView, error)

	Snapshot(ctx context.Context) (model.Snapshot, error)
}
