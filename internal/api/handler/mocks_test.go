package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/nomado-booking-ledger/internal/application"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

// MockResourceService はResourceServiceInterfaceのモック
type MockResourceService struct {
	mock.Mock
}

func (m *MockResourceService) CreateResource(ctx context.Context, input application.CreateResourceInput) (*resource.Resource, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resource.Resource), args.Error(1)
}

func (m *MockResourceService) GetResource(ctx context.Context, id string) (*resource.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resource.Resource), args.Error(1)
}

func (m *MockResourceService) ListResources(ctx context.Context, kind resource.Kind, limit, offset int) ([]*resource.Resource, error) {
	args := m.Called(ctx, kind, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*resource.Resource), args.Error(1)
}

func (m *MockResourceService) CountAvailable(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockLedgerService はLedgerServiceInterfaceのモック
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Quote(ctx context.Context, input application.QuoteInput) (booking.Quote, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(booking.Quote), args.Error(1)
}

func (m *MockLedgerService) Reserve(ctx context.Context, input application.ReserveInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockLedgerService) Cancel(ctx context.Context, bookingID string) (*booking.Booking, error) {
	return m.bookingCall("Cancel", ctx, bookingID)
}

func (m *MockLedgerService) MarkCompleted(ctx context.Context, bookingID string) (*booking.Booking, error) {
	return m.bookingCall("MarkCompleted", ctx, bookingID)
}

func (m *MockLedgerService) MarkNoShow(ctx context.Context, bookingID string) (*booking.Booking, error) {
	return m.bookingCall("MarkNoShow", ctx, bookingID)
}

func (m *MockLedgerService) bookingCall(method string, ctx context.Context, bookingID string) (*booking.Booking, error) {
	args := m.MethodCalled(method, ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockLedgerService) GetBookingForUser(ctx context.Context, bookingID, userID string) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockLedgerService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

// MockPaymentService はPaymentServiceInterfaceのモック
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) InitiatePayment(ctx context.Context, input application.InitiatePaymentInput) (*payment.Transaction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockPaymentService) VerifyPayment(ctx context.Context, input application.VerifyPaymentInput) (*application.VerifyPaymentResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.VerifyPaymentResult), args.Error(1)
}

func (m *MockPaymentService) RetryPayment(ctx context.Context, transactionID, userID string) (*payment.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockPaymentService) AddPaymentMethod(ctx context.Context, userID string, typ payment.MethodType, label string) (*payment.Method, error) {
	args := m.Called(ctx, userID, typ, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Method), args.Error(1)
}

func (m *MockPaymentService) ListPaymentMethods(ctx context.Context, userID string) ([]*payment.Method, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Method), args.Error(1)
}

func (m *MockPaymentService) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error {
	args := m.Called(ctx, userID, methodID)
	return args.Error(0)
}
