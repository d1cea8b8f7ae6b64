package handler

import (
	"context"

	"github.com/sanosuguru/nomado-booking-ledger/internal/application"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

// ResourceServiceInterface はリソースサービスのインターフェース
type ResourceServiceInterface interface {
	CreateResource(ctx context.Context, input application.CreateResourceInput) (*resource.Resource, error)
	GetResource(ctx context.Context, id string) (*resource.Resource, error)
	ListResources(ctx context.Context, kind resource.Kind, limit, offset int) ([]*resource.Resource, error)
	CountAvailable(ctx context.Context, id string) (int, error)
}

// LedgerServiceInterface は予約台帳サービスのインターフェース
type LedgerServiceInterface interface {
	Quote(ctx context.Context, input application.QuoteInput) (booking.Quote, error)
	Reserve(ctx context.Context, input application.ReserveInput) (*booking.Booking, error)
	Cancel(ctx context.Context, bookingID string) (*booking.Booking, error)
	MarkCompleted(ctx context.Context, bookingID string) (*booking.Booking, error)
	MarkNoShow(ctx context.Context, bookingID string) (*booking.Booking, error)
	GetBookingForUser(ctx context.Context, bookingID, userID string) (*booking.Booking, error)
	GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
}

// PaymentServiceInterface は決済サービスのインターフェース
type PaymentServiceInterface interface {
	InitiatePayment(ctx context.Context, input application.InitiatePaymentInput) (*payment.Transaction, error)
	VerifyPayment(ctx context.Context, input application.VerifyPaymentInput) (*application.VerifyPaymentResult, error)
	RetryPayment(ctx context.Context, transactionID, userID string) (*payment.Transaction, error)
	AddPaymentMethod(ctx context.Context, userID string, typ payment.MethodType, label string) (*payment.Method, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]*payment.Method, error)
	SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error
}
