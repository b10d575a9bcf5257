package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ilyakutin/library-engine/internal/errs"
	"github.com/ilyakutin/library-engine/internal/model"
	md "github.com/ilyakutin/library-engine/pkg/middleware"
	"github.com/ilyakutin/library-engine/pkg/validate"
)

type Handler struct {
	svc LibraryService
	log *zap.Logger
}

func New(svc LibraryService, log *zap.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.POST("/books", h.AddBook)
	api.GET("/books/:id", h.GetBook)
	api.PATCH("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.GET("/members", h.ListMembers)
	api.POST("/members", h.AddMember)
	api.GET("/members/:id", h.GetMember)
	api.PATCH("/members/:id", h.UpdateMember)
	api.DELETE("/members/:id", h.DeleteMember)

	api.GET("/loans", h.ListLoans)
	api.POST("/loans", h.RequestLoan)
	api.GET("/loans/:id", h.GetLoan)
	api.POST("/loans/:id/approve", h.ApproveLoan)
	api.POST("/loans/:id/return", h.ReturnLoan)
	api.POST("/loans/:id/overdue", h.MarkOverdue)
	api.DELETE("/loans/:id", h.DeleteLoan)

	api.GET("/calendar", h.GetCalendar)
	api.POST("/calendar/initialize", h.InitializeCalendar)
	api.POST("/calendar/entries", h.AddCalendarEntry)
	api.PATCH("/calendar/entries/:id", h.UpdateCalendarEntry)
	api.DELETE("/calendar/entries/:id", h.DeleteCalendarEntry)
	api.PUT("/calendar/date", h.SetCurrentDate)

	api.GET("/state", h.State)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps the engine's error taxonomy onto status codes: structural
// errors 400, not found 404, constraint violations and an uninitialized
// calendar 409, debounce 429.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrDebounce):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, errs.ErrUninitialized):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errs.IsViolation(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrOperationTag), errors.Is(err, errs.ErrChart):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) AddBook(c echo.Context) error {
	var req model.AddBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	book, err := h.svc.AddBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id := c.Param("id")
	var req model.UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	book, err := h.svc.UpdateBook(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	if err := h.svc.DeleteBook(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetBook(c echo.Context) error {
	book, err := h.svc.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) ListBooks(c echo.Context) error {
	books, err := h.svc.ListBooks(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) AddMember(c echo.Context) error {
	var req model.AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	member, err := h.svc.AddMember(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *Handler) UpdateMember(c echo.Context) error {
	id := c.Param("id")
	var req model.UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	member, err := h.svc.UpdateMember(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) DeleteMember(c echo.Context) error {
	if err := h.svc.DeleteMember(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetMember(c echo.Context) error {
	member, err := h.svc.GetMember(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) ListMembers(c echo.Context) error {
	members, err := h.svc.ListMembers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) RequestLoan(c echo.Context) error {
	var req model.CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	loan, err := h.svc.RequestLoan(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, loan)
}

func (h *Handler) ApproveLoan(c echo.Context) error {
	id := c.Param("id")
	var req model.ApproveLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	loan, err := h.svc.ApproveLoan(c.Request().Context(), id, req.ApprovalDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) ReturnLoan(c echo.Context) error {
	id := c.Param("id")
	var req model.ReturnLoanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	loan, err := h.svc.ReturnLoan(c.Request().Context(), id, req.ReturnDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) MarkOverdue(c echo.Context) error {
	loan, err := h.svc.MarkOverdue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) DeleteLoan(c echo.Context) error {
	if err := h.svc.DeleteLoan(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetLoan(c echo.Context) error {
	loan, err := h.svc.GetLoan(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) ListLoans(c echo.Context) error {
	loans, err := h.svc.ListLoans(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) GetCalendar(c echo.Context) error {
	view, err := h.svc.GetCalendar(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) InitializeCalendar(c echo.Context) error {
	view, err := h.svc.InitializeCalendar(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) AddCalendarEntry(c echo.Context) error {
	var req model.CalendarEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	view, err := h.svc.AddCalendarEntry(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *Handler) UpdateCalendarEntry(c echo.Context) error {
	id := c.Param("id")
	var req model.CalendarEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	view, err := h.svc.UpdateCalendarEntry(c.Request().Context(), id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) DeleteCalendarEntry(c echo.Context) error {
	view, err := h.svc.DeleteCalendarEntry(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) SetCurrentDate(c echo.Context) error {
	var req model.SetDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	view, err := h.svc.SetCurrentDate(c.Request().Context(), req.Date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// State serves the full aggregate snapshot.
func (h *Handler) State(c echo.Context) error {
	snap, err := h.svc.Snapshot(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	b, err := model.MarshalSnapshot(snap)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSONBlob(http.StatusOK, b)
}
