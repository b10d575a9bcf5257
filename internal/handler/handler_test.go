package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ilyakutin/library-engine/internal/errs"
	"github.com/ilyakutin/library-engine/internal/handler/mocks"
	"github.com/ilyakutin/library-engine/internal/model"
	"github.com/ilyakutin/library-engine/pkg/validate"
)

type mockBehavior func(s *mocks.MockLibraryService)

func newTestRouter(svc LibraryService) *echo.Echo {
	h := New(svc, zap.NewNop())
	e := echo.New()
	e.Validator = validate.NewCustomValidator()

	e.POST("/api/v1/books", h.AddBook)
	e.GET("/api/v1/books/:id", h.GetBook)
	e.DELETE("/api/v1/books/:id", h.DeleteBook)
	e.POST("/api/v1/loans", h.RequestLoan)
	e.POST("/api/v1/loans/:id/approve", h.ApproveLoan)
	e.POST("/api/v1/loans/:id/return", h.ReturnLoan)
	e.GET("/api/v1/calendar", h.GetCalendar)
	e.PUT("/api/v1/calendar/date", h.SetCurrentDate)

	return e
}

func TestHandler_AddBook(t *testing.T) {
	book := model.Book{
		ID:            "b1",
		Title:         "Dune",
		Author:        "Frank Herbert",
		ISBN:          "9780441013593",
		Quantity:      3,
		Available:     true,
		CurrentStatus: model.BookAvailable,
	}

	tests := []struct {
		name               string
		inputBody          string
		mockBehavior       mockBehavior
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:      "ok",
			inputBody: `{"title":"Dune","author":"Frank Herbert","isbn":"9780441013593","quantity":3}`,
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().AddBook(gomock.Any(), model.AddBookRequest{
					Title:    "Dune",
					Author:   "Frank Herbert",
					ISBN:     "9780441013593",
					Quantity: 3,
				}).Return(book, nil)
			},
			expectedStatusCode: http.StatusCreated,
			expectedBody:       `{"id":"b1","title":"Dune","author":"Frank Herbert","isbn":"9780441013593","quantity":3,"available":true,"currentStatus":"available"}`,
		},
		{
			name:               "missing title",
			inputBody:          `{"isbn":"9780441013593"}`,
			mockBehavior:       func(s *mocks.MockLibraryService) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:      "duplicate isbn",
			inputBody: `{"title":"Dune","isbn":"9780441013593"}`,
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().AddBook(gomock.Any(), gomock.Any()).
					Return(model.Book{}, errs.NewViolation("lib17", "book with ISBN %q already exists", "9780441013593"))
			},
			expectedStatusCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockLibraryService(ctrl)
			tt.mockBehavior(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/books", strings.NewReader(tt.inputBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

			newTestRouter(svc).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatusCode, rec.Code)
			if tt.expectedBody != "" {
				require.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_GetBook(t *testing.T) {
	tests := []struct {
		name               string
		bookID             string
		mockBehavior       mockBehavior
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:   "ok",
			bookID: "b1",
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().GetBook(gomock.Any(), "b1").Return(model.Book{
					ID:            "b1",
					Title:         "Dune",
					ISBN:          "9780441013593",
					Available:     true,
					CurrentStatus: model.BookAvailable,
				}, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `{"id":"b1","title":"Dune","author":"","isbn":"9780441013593","quantity":0,"available":true,"currentStatus":"available"}`,
		},
		{
			name:   "not found",
			bookID: "missing",
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().GetBook(gomock.Any(), "missing").
					Return(model.Book{}, errors.Wrap(errs.ErrNotFound, "book"))
			},
			expectedStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockLibraryService(ctrl)
			tt.mockBehavior(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/books/"+tt.bookID, nil)

			newTestRouter(svc).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatusCode, rec.Code)
			if tt.expectedBody != "" {
				require.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_DeleteBook(t *testing.T) {
	tests := []struct {
		name               string
		mockBehavior       mockBehavior
		expectedStatusCode int
	}{
		{
			name: "ok",
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().DeleteBook(gomock.Any(), "b1").Return(nil)
			},
			expectedStatusCode: http.StatusNoContent,
		},
		{
			name: "active loans",
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().DeleteBook(gomock.Any(), "b1").
					Return(errs.NewViolation("lib19", "cannot delete book with active loans"))
			},
			expectedStatusCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockLibraryService(ctrl)
			tt.mockBehavior(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/books/b1", nil)

			newTestRouter(svc).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatusCode, rec.Code)
		})
	}
}

func TestHandler_ApproveLoan(t *testing.T) {
	approvalDate := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	requestDate := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name               string
		inputBody          string
		mockBehavior       mockBehavior
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name:      "ok",
			inputBody: `{"approvalDate":"2024-03-02T10:00:00Z"}`,
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().ApproveLoan(gomock.Any(), "l1", approvalDate).Return(model.Loan{
					ID:           "l1",
					BookID:       "b1",
					MemberID:     "m1",
					RequestDate:  requestDate,
					ApprovalDate: &approvalDate,
					Status:       model.LoanCurrent,
				}, nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       `{"id":"l1","bookId":"b1","memberId":"m1","requestDate":"2024-03-01T09:00:00Z","approvalDate":"2024-03-02T10:00:00Z","status":"current"}`,
		},
		{
			name:               "missing approval date",
			inputBody:          `{}`,
			mockBehavior:       func(s *mocks.MockLibraryService) {},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:      "already current",
			inputBody: `{"approvalDate":"2024-03-02T10:00:00Z"}`,
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().ApproveLoan(gomock.Any(), "l1", approvalDate).
					Return(model.Loan{}, errs.NewViolation("lib04", "only requested loans can be approved"))
			},
			expectedStatusCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockLibraryService(ctrl)
			tt.mockBehavior(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/loans/l1/approve", strings.NewReader(tt.inputBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

			newTestRouter(svc).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatusCode, rec.Code)
			if tt.expectedBody != "" {
				require.JSONEq(t, tt.expectedBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_SetCurrentDate(t *testing.T) {
	date := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name               string
		inputBody          string
		mockBehavior       mockBehavior
		expectedStatusCode int
	}{
		{
			name:      "ok",
			inputBody: `{"date":"2024-03-08T00:00:00Z"}`,
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().SetCurrentDate(gomock.Any(), date).
					Return(model.CalendarView{Initialized: true, CurrentDate: date}, nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:      "debounced",
			inputBody: `{"date":"2024-03-08T00:00:00Z"}`,
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().SetCurrentDate(gomock.Any(), date).
					Return(model.CalendarView{}, errors.Wrap(errs.ErrDebounce, "read-only within 1s"))
			},
			expectedStatusCode: http.StatusTooManyRequests,
		},
		{
			name:      "uninitialized",
			inputBody: `{"date":"2024-03-08T00:00:00Z"}`,
			mockBehavior: func(s *mocks.MockLibraryService) {
				s.EXPECT().SetCurrentDate(gomock.Any(), date).
					Return(model.CalendarView{}, errs.ErrUninitialized)
			},
			expectedStatusCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := mocks.NewMockLibraryService(ctrl)
			tt.mockBehavior(svc)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/api/v1/calendar/date", strings.NewReader(tt.inputBody))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

			newTestRouter(svc).ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatusCode, rec.Code)
		})
	}
}

func TestHandler_GetCalendar(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	date := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := mocks.NewMockLibraryService(ctrl)
	svc.EXPECT().GetCalendar(gomock.Any()).Return(model.CalendarView{
		Initialized:  true,
		CurrentDate:  date,
		LastModified: date,
		Entries:      []model.CalendarEntry{},
	}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar", nil)

	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t,
		`{"initialized":true,"currentDate":"2024-03-01T09:00:00Z","lastModified":"2024-03-01T09:00:00Z","entries":[]}`,
		rec.Body.String())
}
