package model

import (
	"time"
)

type AddBookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type UpdateBookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type AddMemberRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
}

type UpdateMemberRequest struct {
	Name            string          `json:"name" validate:"required"`
	Email           string          `json:"email" validate:"required,email"`
	Phone           string          `json:"phone"`
	Status          MemberStatus    `json:"status" validate:"omitempty,oneof=permitted restricted suspended"`
	BorrowingStatus BorrowingStatus `json:"borrowingStatus" validate:"omitempty,oneof=under_limit over_limit"`
}

type CreateLoanRequest struct {
	BookID       string     `json:"bookId" validate:"required"`
	MemberID     string     `json:"memberId" validate:"required"`
	RequestDate  time.Time  `json:"requestDate"`
	ApprovalDate *time.Time `json:"approvalDate,omitempty"`
}

type ApproveLoanRequest struct {
	ApprovalDate time.Time `json:"approvalDate" validate:"required"`
}

type ReturnLoanRequest struct {
	ReturnDate time.Time `json:"returnDate" validate:"required"`
}

type CalendarEntryRequest struct {
	Date             time.Time `json:"date" validate:"required"`
	Type             EntryType `json:"type" validate:"required,oneof=due_date holiday system_maintenance"`
	Description      string    `json:"description"`
	AffectedServices []string  `json:"affectedServices,omitempty"`
}

type SetDateRequest struct {
	Date time.Time `json:"date" validate:"required"`
}
