package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockResourceRepository implements resource.Repository
type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) Create(ctx context.Context, r *resource.Resource) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil && r.ID == "" {
		r.ID = "res-new"
	}
	return args.Error(0)
}

func (m *MockResourceRepository) GetByID(ctx context.Context, id string) (*resource.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resource.Resource), args.Error(1)
}

func (m *MockResourceRepository) List(ctx context.Context, kind resource.Kind, limit, offset int) ([]*resource.Resource, error) {
	args := m.Called(ctx, kind, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*resource.Resource), args.Error(1)
}

func (m *MockResourceRepository) DecrementCapacity(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

func (m *MockResourceRepository) RestoreCapacity(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

func (m *MockResourceRepository) CountAvailable(ctx context.Context, id string) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

// MockBookingRepository implements booking.Repository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByBookingID(ctx context.Context, bookingID string) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, bookingID string) (*booking.Booking, error) {
	args := m.Called(ctx, tx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) ListConfirmedEndedBefore(ctx context.Context, before time.Time, limit int) ([]string, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockIDGenerator implements booking.IDGenerator
type MockIDGenerator struct {
	mock.Mock
}

func (m *MockIDGenerator) Generate(res *resource.Resource) (string, error) {
	args := m.Called(res)
	return args.String(0), args.Error(1)
}

// MockAvailabilityCache implements AvailabilityCache
type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) GetAvailable(ctx context.Context, resourceID string) (int, error) {
	args := m.Called(ctx, resourceID)
	return args.Int(0), args.Error(1)
}

func (m *MockAvailabilityCache) SetAvailable(ctx context.Context, resourceID string, count int, ttl time.Duration) error {
	args := m.Called(ctx, resourceID, count, ttl)
	return args.Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context, resourceID string) error {
	args := m.Called(ctx, resourceID)
	return args.Error(0)
}

// MockEventPublisher implements EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishBookingEvent(ctx context.Context, event booking.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockRecorder implements Recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ObserveTransition(operation, result string) {
	m.Called(operation, result)
}

func (m *MockRecorder) ObserveCapacityConflict(kind string) {
	m.Called(kind)
}

func (m *MockRecorder) ObservePaymentVerification(result string) {
	m.Called(result)
}

func (m *MockRecorder) ObserveCache(hit bool) {
	m.Called(hit)
}

// MockPaymentRepository implements payment.Repository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, t *payment.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*payment.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) GetActiveByBookingID(ctx context.Context, bookingID string) (*payment.Transaction, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*payment.Transaction, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Transaction), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, tx transaction.Tx, t *payment.Transaction) error {
	args := m.Called(ctx, tx, t)
	return args.Error(0)
}

func (m *MockPaymentRepository) CreateInvoice(ctx context.Context, inv *payment.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

// MockMethodRepository implements payment.MethodRepository
type MockMethodRepository struct {
	mock.Mock
}

func (m *MockMethodRepository) Create(ctx context.Context, pm *payment.Method) error {
	args := m.Called(ctx, pm)
	return args.Error(0)
}

func (m *MockMethodRepository) ListByUserID(ctx context.Context, userID string) ([]*payment.Method, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Method), args.Error(1)
}

func (m *MockMethodRepository) SetDefault(ctx context.Context, tx transaction.Tx, userID, methodID string) error {
	args := m.Called(ctx, tx, userID, methodID)
	return args.Error(0)
}

// MockBookingLedger implements BookingLedger
type MockBookingLedger struct {
	mock.Mock
}

func (m *MockBookingLedger) GetBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingLedger) Confirm(ctx context.Context, bookingID string) (*booking.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

// MockSignatureVerifier implements payment.SignatureVerifier
type MockSignatureVerifier struct {
	mock.Mock
}

func (m *MockSignatureVerifier) Verify(orderID, paymentID, signature string) error {
	args := m.Called(orderID, paymentID, signature)
	return args.Error(0)
}
