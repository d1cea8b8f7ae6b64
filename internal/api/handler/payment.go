package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/api"
	"github.com/sanosuguru/nomado-booking-ledger/internal/application"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
)

type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type InitiatePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required" example:"NOMAB12CD34EF"`
}

// VerifyPaymentRequest はゲートウェイのコールバック内容
type VerifyPaymentRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	OrderID       string `json:"order_id" validate:"required" example:"order_1a2b3c4d5e6f7a"`
	PaymentID     string `json:"payment_id" validate:"required" example:"pay_29QQoUBi66xm2f"`
	Signature     string `json:"signature" validate:"required"`
}

type TransactionResponse struct {
	ID             string          `json:"id"`
	BookingID      string          `json:"booking_id"`
	Type           string          `json:"type" example:"HOTEL_BOOKING"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency" example:"INR"`
	GatewayOrderID string          `json:"gateway_order_id"`
	Status         string          `json:"status" example:"PROCESSING"`
	FailureReason  string          `json:"failure_reason,omitempty"`
	InitiatedAt    time.Time       `json:"initiated_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

func toTransactionResponse(t *payment.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		BookingID:      t.BookingID,
		Type:           string(t.Type),
		Amount:         t.Amount,
		Currency:       t.Currency,
		GatewayOrderID: t.GatewayOrderID,
		Status:         string(t.Status),
		FailureReason:  t.FailureReason,
		InitiatedAt:    t.InitiatedAt,
		CompletedAt:    t.CompletedAt,
	}
}

type InvoiceResponse struct {
	InvoiceNumber string          `json:"invoice_number" example:"NOM1A2B3C4D"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IssuedAt      time.Time       `json:"issued_at"`
	DueAt         time.Time       `json:"due_at"`
}

type VerifyPaymentResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Booking     BookingResponse     `json:"booking"`
	Invoice     *InvoiceResponse    `json:"invoice,omitempty"`
}

type AddPaymentMethodRequest struct {
	Type  string `json:"type" validate:"required,oneof=CREDIT_CARD DEBIT_CARD UPI NET_BANKING WALLET" example:"UPI"`
	Label string `json:"label" validate:"max=100" example:"asha@okbank"`
}

type PaymentMethodResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Label     string    `json:"label"`
	IsDefault bool      `json:"is_default"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toPaymentMethodResponse(m *payment.Method) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:        m.ID,
		Type:      string(m.Type),
		Label:     m.Label,
		IsDefault: m.IsDefault,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

// Initiate godoc
// @Summary 決済を開始
// @Description 保留中の予約に対してゲートウェイの注文を作成します
// @Tags payments
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body InitiatePaymentRequest true "予約番号"
// @Success 201 {object} TransactionResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /payments [post]
func (h *PaymentHandler) Initiate(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req InitiatePaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	txn, err := h.service.InitiatePayment(c.Request().Context(), application.InitiatePaymentInput{
		BookingID: req.BookingID,
		UserID:    userID,
	})
	if err != nil {
		return api.MapError(err)
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(txn))
}

// Verify godoc
// @Summary 決済を検証
// @Description 署名を検証し、成功なら予約を確定して請求書を発行します
// @Tags payments
// @Accept json
// @Produce json
// @Param request body VerifyPaymentRequest true "ゲートウェイのコールバック"
// @Success 200 {object} VerifyPaymentResponse
// @Failure 409 {object} api.ErrorResponse "空きがありません"
// @Failure 404 {object} api.ErrorResponse "決済が見つかりません"
// @Failure 422 {object} api.ErrorResponse "署名または注文IDが不正"
// @Router /payments/verify [post]
func (h *PaymentHandler) Verify(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req VerifyPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.service.VerifyPayment(c.Request().Context(), application.VerifyPaymentInput{
		UserID:        userID,
		TransactionID: req.TransactionID,
		OrderID:       req.OrderID,
		PaymentID:     req.PaymentID,
		Signature:     req.Signature,
	})
	if err != nil {
		return api.MapError(err)
	}
	resp := VerifyPaymentResponse{
		Transaction: toTransactionResponse(result.Transaction),
		Booking:     toBookingResponse(result.Booking),
	}
	if inv := result.Invoice; inv != nil {
		resp.Invoice = &InvoiceResponse{
			InvoiceNumber: inv.InvoiceNumber,
			Subtotal:      inv.Subtotal,
			TaxAmount:     inv.TaxAmount,
			TotalAmount:   inv.TotalAmount,
			IssuedAt:      inv.IssuedAt,
			DueAt:         inv.DueAt,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Retry godoc
// @Summary 失敗した決済を再試行
// @Tags payments
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "決済ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /payments/{id}/retry [post]
func (h *PaymentHandler) Retry(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	txn, err := h.service.RetryPayment(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return api.MapError(err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(txn))
}

// AddMethod godoc
// @Summary 支払い方法を登録
// @Tags payment-methods
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body AddPaymentMethodRequest true "支払い方法"
// @Success 201 {object} PaymentMethodResponse
// @Router /payment-methods [post]
func (h *PaymentHandler) AddMethod(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	var req AddPaymentMethodRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.service.AddPaymentMethod(c.Request().Context(), userID, payment.MethodType(req.Type), req.Label)
	if err != nil {
		return api.MapError(err)
	}
	return c.JSON(http.StatusCreated, toPaymentMethodResponse(m))
}

// ListMethods godoc
// @Summary 支払い方法の一覧
// @Tags payment-methods
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Success 200 {array} PaymentMethodResponse
// @Router /payment-methods [get]
func (h *PaymentHandler) ListMethods(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	methods, err := h.service.ListPaymentMethods(c.Request().Context(), userID)
	if err != nil {
		return api.MapError(err)
	}
	resp := make([]PaymentMethodResponse, len(methods))
	for i, m := range methods {
		resp[i] = toPaymentMethodResponse(m)
	}
	return c.JSON(http.StatusOK, resp)
}

// SetDefaultMethod godoc
// @Summary 既定の支払い方法を設定
// @Tags payment-methods
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "支払い方法ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /payment-methods/{id}/default [post]
func (h *PaymentHandler) SetDefaultMethod(c echo.Context) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	if err := h.service.SetDefaultPaymentMethod(c.Request().Context(), userID, c.Param("id")); err != nil {
		return api.MapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
