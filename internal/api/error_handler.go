package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
	"github.com/sanosuguru/nomado-booking-ledger/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

var errorStatus = []struct {
	err  error
	code int
}{
	{booking.ErrBookingNotFound, http.StatusNotFound},
	{resource.ErrResourceNotFound, http.StatusNotFound},
	{payment.ErrTransactionNotFound, http.StatusNotFound},
	{payment.ErrMethodNotFound, http.StatusNotFound},

	{resource.ErrInsufficientCapacity, http.StatusConflict},
	{resource.ErrCapacityOverflow, http.StatusConflict},
	{resource.ErrResourceInactive, http.StatusConflict},
	{booking.ErrInvalidTransition, http.StatusConflict},
	{payment.ErrTransactionNotPending, http.StatusConflict},
	{payment.ErrTransactionNotRetry, http.StatusConflict},
	{payment.ErrInvoiceAlreadyExists, http.StatusConflict},
	{payment.ErrActiveTransaction, http.StatusConflict},

	{payment.ErrInvalidSignature, http.StatusUnprocessableEntity},
	{payment.ErrOrderMismatch, http.StatusUnprocessableEntity},

	{booking.ErrBookingIDExhausted, http.StatusServiceUnavailable},

	{booking.ErrInvalidRange, http.StatusBadRequest},
	{booking.ErrTravelDateRequired, http.StatusBadRequest},
	{booking.ErrInvalidQuantity, http.StatusBadRequest},
	{booking.ErrUserIDRequired, http.StatusBadRequest},
	{booking.ErrResourceIDRequired, http.StatusBadRequest},
	{booking.ErrContactRequired, http.StatusBadRequest},
	{resource.ErrNameRequired, http.StatusBadRequest},
	{resource.ErrInvalidKind, http.StatusBadRequest},
	{resource.ErrInvalidTransportType, http.StatusBadRequest},
	{resource.ErrInvalidPrice, http.StatusBadRequest},
	{resource.ErrInvalidTotalCapacity, http.StatusBadRequest},
	{resource.ErrCapacityOutOfBounds, http.StatusBadRequest},
	{resource.ErrInvalidQuantity, http.StatusBadRequest},
	{payment.ErrInvalidAmount, http.StatusBadRequest},
	{payment.ErrInvalidMethodType, http.StatusBadRequest},
}

// MapError はドメインエラーを HTTP エラーに変換する
// 対応するものが無ければ 500 とし、内部のメッセージは返さない
func MapError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return echo.NewHTTPError(m.code, m.err.Error()).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := MapError(err)
	message, ok := he.Message.(string)
	if !ok {
		message = http.StatusText(he.Code)
	}

	if he.Code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", he.Code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(he.Code, ErrorResponse{
		Error: message,
		Code:  he.Code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
