package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/api"
	"github.com/sanosuguru/nomado-booking-ledger/internal/application"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
)

type BookingHandler struct {
	service LedgerServiceInterface
}

func NewBookingHandler(s LedgerServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type ContactRequest struct {
	Name  string `json:"name" validate:"required,max=100" example:"Asha Rao"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=20" example:"+919800000000"`
	Email string `json:"email" validate:"required,email" example:"asha@example.com"`
}

// CreateBookingRequest はホテルなら check_in / check_out、路線なら travel_date を指定する
type CreateBookingRequest struct {
	ResourceID      string         `json:"resource_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Quantity        int            `json:"quantity" validate:"required,min=1" example:"2"`
	CheckIn         string         `json:"check_in,omitempty" validate:"omitempty,date" example:"2026-03-01"`
	CheckOut        string         `json:"check_out,omitempty" validate:"omitempty,date" example:"2026-03-04"`
	TravelDate      string         `json:"travel_date,omitempty" validate:"omitempty,date" example:"2026-05-10"`
	Contact         ContactRequest `json:"contact" validate:"required"`
	SpecialRequests string         `json:"special_requests,omitempty" validate:"max=500"`
}

func (r CreateBookingRequest) dates() booking.DateRange {
	if r.TravelDate != "" {
		return booking.NewTravel(parseDate(r.TravelDate))
	}
	return toDateRange(parseDate(r.CheckIn), parseDate(r.CheckOut))
}

type BookingResponse struct {
	BookingID       string          `json:"booking_id" example:"NOMAB12CD34EF"`
	UserID          string          `json:"user_id"`
	ResourceID      string          `json:"resource_id"`
	ResourceKind    string          `json:"resource_kind" example:"hotel"`
	CheckIn         string          `json:"check_in,omitempty"`
	CheckOut        string          `json:"check_out,omitempty"`
	TravelDate      string          `json:"travel_date,omitempty"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Duration        int             `json:"duration"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status" example:"PENDING"`
	Reviewable      bool            `json:"reviewable"`
	ContactName     string          `json:"contact_name"`
	ContactEmail    string          `json:"contact_email"`
	SpecialRequests string          `json:"special_requests,omitempty"`
	ConfirmedAt     *time.Time      `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		BookingID:       b.BookingID,
		UserID:          b.UserID,
		ResourceID:      b.ResourceID,
		ResourceKind:    string(b.ResourceKind),
		Quantity:        b.Quantity,
		UnitPrice:       b.UnitPrice,
		Duration:        b.Duration,
		TotalAmount:     b.TotalAmount,
		Status:          string(b.Status),
		Reviewable:      b.IsReviewable(),
		ContactName:     b.Contact.Name,
		ContactEmail:    b.Contact.Email,
		SpecialRequests: b.SpecialRequests,
		ConfirmedAt:     b.ConfirmedAt,
		CancelledAt:     b.CancelledAt,
		CreatedAt:       b.CreatedAt,
	}
	if b.Dates.End.IsZero() {
		resp.TravelDate = formatDate(b.Dates.Start)
	} else {
		resp.CheckIn = formatDate(b.Dates.Start)
		resp.CheckOut = formatDate(b.Dates.End)
	}
	return resp
}

// Create godoc
// @Summary 予約を作成
// @Description 保留中の予約を作成します（在庫は確定時に減算）
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "空きがありません"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := h.service.Reserve(c.Request().Context(), application.ReserveInput{
		UserID:          userID,
		ResourceID:      req.ResourceID,
		Quantity:        req.Quantity,
		Dates:           req.dates(),
		Contact:         booking.Contact{Name: req.Contact.Name, Phone: req.Contact.Phone, Email: req.Contact.Email},
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return api.MapError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// List godoc
// @Summary ユーザーの予約一覧を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	limit, offset := pageParams(c)
	bookings, err := h.service.GetUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return api.MapError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param booking_id path string true "予約番号"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{booking_id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	b, err := h.service.GetBookingForUser(c.Request().Context(), c.Param("booking_id"), userID)
	if err != nil {
		return api.MapError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約を取り消す
// @Description 確定済みの場合は在庫を戻します
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param booking_id path string true "予約番号"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /bookings/{booking_id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, true, h.service.Cancel)
}

// Complete godoc
// @Summary 予約を利用完了にする
// @Tags bookings
// @Produce json
// @Param booking_id path string true "予約番号"
// @Success 200 {object} BookingResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /bookings/{booking_id}/complete [post]
func (h *BookingHandler) Complete(c echo.Context) error {
	return h.transition(c, false, h.service.MarkCompleted)
}

// NoShow godoc
// @Summary 予約を不泊・不乗にする
// @Tags bookings
// @Produce json
// @Param booking_id path string true "予約番号"
// @Success 200 {object} BookingResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /bookings/{booking_id}/no-show [post]
func (h *BookingHandler) NoShow(c echo.Context) error {
	return h.transition(c, false, h.service.MarkNoShow)
}

// transition は ownerOnly なら本人の予約であることを確認してから状態を変更する
func (h *BookingHandler) transition(c echo.Context, ownerOnly bool, fn func(ctx context.Context, bookingID string) (*booking.Booking, error)) error {
	ctx := c.Request().Context()
	bookingID := c.Param("booking_id")
	if ownerOnly {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}
		if _, err := h.service.GetBookingForUser(ctx, bookingID, userID); err != nil {
			return api.MapError(err)
		}
	}
	b, err := fn(ctx, bookingID)
	if err != nil {
		return api.MapError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}
