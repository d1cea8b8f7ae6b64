package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "予約なし", err: booking.ErrBookingNotFound, want: http.StatusNotFound},
		{name: "ラップされた予約なし", err: fmt.Errorf("取得失敗: %w", booking.ErrBookingNotFound), want: http.StatusNotFound},
		{name: "空き不足", err: resource.ErrInsufficientCapacity, want: http.StatusConflict},
		{name: "在庫戻し超過", err: fmt.Errorf("在庫戻し: %w", resource.ErrCapacityOverflow), want: http.StatusConflict},
		{name: "有効な決済あり", err: payment.ErrActiveTransaction, want: http.StatusConflict},
		{name: "注文ID不一致", err: payment.ErrOrderMismatch, want: http.StatusUnprocessableEntity},
		{name: "不正な遷移", err: booking.ErrInvalidTransition, want: http.StatusConflict},
		{name: "署名不正", err: payment.ErrInvalidSignature, want: http.StatusUnprocessableEntity},
		{name: "日付不正", err: booking.ErrInvalidRange, want: http.StatusBadRequest},
		{name: "採番失敗", err: booking.ErrBookingIDExhausted, want: http.StatusServiceUnavailable},
		{name: "HTTPErrorはそのまま", err: echo.NewHTTPError(http.StatusUnauthorized, "x"), want: http.StatusUnauthorized},
		{name: "未知のエラー", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapError(tt.err).Code)
		})
	}
}

func TestCustomHTTPErrorHandler(t *testing.T) {
	e := echo.New()

	t.Run("ドメインエラーを統一フォーマットで返す", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		CustomHTTPErrorHandler(resource.ErrInsufficientCapacity, c)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, resource.ErrInsufficientCapacity.Error(), resp.Error)
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("内部エラーの詳細は返さない", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		CustomHTTPErrorHandler(errors.New("pq: connection refused"), c)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})
}

func TestCustomValidator(t *testing.T) {
	type req struct {
		Date string `validate:"required,date"`
	}
	v := NewValidator()

	assert.NoError(t, v.Validate(&req{Date: "2026-03-01"}))

	err := v.Validate(&req{Date: "03/01/2026"})
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
