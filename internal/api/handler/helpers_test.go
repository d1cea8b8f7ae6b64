package handler

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/nomado-booking-ledger/internal/api/middleware"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

func newContext(e *echo.Echo, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "echo.HTTPError ではありません: %v", err)
	assert.Equal(t, code, he.Code)
}

func sampleBooking(status booking.Status) *booking.Booking {
	checkIn := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &booking.Booking{
		BookingID:    "NOMAB12CD34EF",
		UserID:       "user-123",
		ResourceID:   "hotel-1",
		ResourceKind: resource.KindHotel,
		Dates:        booking.NewStay(checkIn, checkIn.AddDate(0, 0, 3)),
		Quantity:     2,
		UnitPrice:    decimal.NewFromInt(2000),
		Duration:     3,
		TotalAmount:  decimal.NewFromInt(12000),
		Status:       status,
		Contact:      booking.Contact{Name: "Asha", Email: "asha@example.com"},
		CreatedAt:    checkIn.AddDate(0, -1, 0),
	}
}
