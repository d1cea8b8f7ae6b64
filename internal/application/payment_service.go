package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/nomado-booking-ledger/internal/config"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/payment"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
	"github.com/sanosuguru/nomado-booking-ledger/internal/pkg/logger"
)

// 決済失敗時に記録する理由
const (
	FailureReasonSignature   = "signature verification failed"
	FailureReasonUnavailable = "no longer available"
)

// BookingLedger は決済から利用する台帳の操作
type BookingLedger interface {
	GetBooking(ctx context.Context, bookingID string) (*booking.Booking, error)
	Confirm(ctx context.Context, bookingID string) (*booking.Booking, error)
}

// PaymentService は予約の決済を扱う
// 台帳は決済の成功・失敗にのみ反応し、署名検証に成功した場合だけ Confirm を呼ぶ
type PaymentService struct {
	txManager   transaction.Manager
	paymentRepo payment.Repository
	methodRepo  payment.MethodRepository
	ledger      BookingLedger
	verifier    payment.SignatureVerifier
	currency    string
	gstRate     decimal.Decimal
	recorder    Recorder
}

func NewPaymentService(
	tm transaction.Manager,
	pr payment.Repository,
	mr payment.MethodRepository,
	ledger BookingLedger,
	verifier payment.SignatureVerifier,
	cfg config.PaymentConfig,
	recorder Recorder,
) *PaymentService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	gst := cfg.GSTRate
	if gst.IsZero() {
		gst = payment.DefaultGSTRate
	}
	return &PaymentService{
		txManager:   tm,
		paymentRepo: pr,
		methodRepo:  mr,
		ledger:      ledger,
		verifier:    verifier,
		currency:    currency,
		gstRate:     gst,
		recorder:    recorder,
	}
}

type InitiatePaymentInput struct {
	BookingID string
	UserID    string
}

// InitiatePayment は保留中の予約に対して処理中の決済を作成する
func (s *PaymentService) InitiatePayment(ctx context.Context, input InitiatePaymentInput) (*payment.Transaction, error) {
	b, err := s.ledger.GetBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != input.UserID {
		return nil, booking.ErrBookingNotFound
	}
	existing, err := s.activeTransaction(ctx, b.BookingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Info("既存の決済を返します",
			zap.String("transaction_id", existing.ID),
			zap.String("booking_id", b.BookingID),
			zap.String("status", string(existing.Status)),
		)
		return existing, nil
	}
	if b.Status != booking.StatusPending {
		return nil, booking.ErrInvalidTransition
	}

	txn := payment.NewTransaction(input.UserID, b.BookingID, payment.TypeFor(b.ResourceKind), b.TotalAmount, s.currency)
	txn.GatewayOrderID = newOrderID()
	if err := txn.Validate(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, txn); err != nil {
		if errors.Is(err, payment.ErrActiveTransaction) {
			// 同時に作成された決済を返す
			return s.paymentRepo.GetActiveByBookingID(ctx, b.BookingID)
		}
		return nil, fmt.Errorf("決済作成に失敗しました: %w", err)
	}
	logger.Info("決済を開始しました",
		zap.String("transaction_id", txn.ID),
		zap.String("booking_id", b.BookingID),
		zap.String("amount", txn.Amount.String()),
	)
	return txn, nil
}

// activeTransaction は予約の処理中または成功済みの決済を返す。無ければ nil
func (s *PaymentService) activeTransaction(ctx context.Context, bookingID string) (*payment.Transaction, error) {
	txn, err := s.paymentRepo.GetActiveByBookingID(ctx, bookingID)
	if errors.Is(err, payment.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func newOrderID() string {
	return "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
}

type VerifyPaymentInput struct {
	UserID        string
	TransactionID string
	OrderID       string
	PaymentID     string
	Signature     string
}

// VerifyPaymentResult は検証成功時の結果
// 請求書の発行に失敗した場合 Invoice は nil
type VerifyPaymentResult struct {
	Transaction *payment.Transaction
	Booking     *booking.Booking
	Invoice     *payment.Invoice
}

// VerifyPayment はゲートウェイの署名を検証し、成功なら予約を確定して請求書を発行する
//
// 他のユーザーの決済は ErrTransactionNotFound、注文IDが一致しなければ状態を変えずに
// payment.ErrOrderMismatch を返す。署名が不正なら決済を FAILED にして payment.ErrInvalidSignature を返す。
// 確定時に空きが無ければ決済を FAILED（no longer available）にして
// resource.ErrInsufficientCapacity を返す。
func (s *PaymentService) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*VerifyPaymentResult, error) {
	txn, err := s.paymentRepo.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != input.UserID {
		return nil, payment.ErrTransactionNotFound
	}
	if txn.Status == payment.StatusSuccess && txn.GatewayPaymentID == input.PaymentID {
		// 同じ通知の再送
		b, err := s.ledger.GetBooking(ctx, txn.BookingID)
		if err != nil {
			return nil, err
		}
		return &VerifyPaymentResult{Transaction: txn, Booking: b}, nil
	}
	if txn.Status != payment.StatusProcessing {
		return nil, payment.ErrTransactionNotPending
	}

	if input.OrderID != txn.GatewayOrderID {
		s.recorder.ObservePaymentVerification("order_mismatch")
		return nil, payment.ErrOrderMismatch
	}
	if err := s.verifier.Verify(txn.GatewayOrderID, input.PaymentID, input.Signature); err != nil {
		return nil, s.fail(ctx, txn.ID, FailureReasonSignature, "invalid_signature", err)
	}

	b, err := s.ledger.Confirm(ctx, txn.BookingID)
	if err != nil {
		if errors.Is(err, resource.ErrInsufficientCapacity) {
			return nil, s.fail(ctx, txn.ID, FailureReasonUnavailable, "capacity", err)
		}
		// 決済は PROCESSING のまま残し、再通知で確定を再試行できるようにする
		s.recorder.ObservePaymentVerification("error")
		return nil, err
	}

	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		locked, err := s.paymentRepo.GetForUpdate(ctx, tx, txn.ID)
		if err != nil {
			return err
		}
		if err := locked.MarkSuccess(input.PaymentID); err != nil {
			return err
		}
		txn = locked
		return s.paymentRepo.Update(ctx, tx, locked)
	})
	if err != nil {
		s.recorder.ObservePaymentVerification("error")
		return nil, err
	}
	s.recorder.ObservePaymentVerification("success")
	logger.Info("決済が成功しました",
		zap.String("transaction_id", txn.ID),
		zap.String("booking_id", b.BookingID),
	)

	return &VerifyPaymentResult{Transaction: txn, Booking: b, Invoice: s.issueInvoice(ctx, txn)}, nil
}

// fail は決済を FAILED にして cause を返す
func (s *PaymentService) fail(ctx context.Context, txnID, reason, result string, cause error) error {
	s.recorder.ObservePaymentVerification(result)
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		locked, err := s.paymentRepo.GetForUpdate(ctx, tx, txnID)
		if err != nil {
			return err
		}
		if err := locked.MarkFailed(reason); err != nil {
			return err
		}
		return s.paymentRepo.Update(ctx, tx, locked)
	})
	if err != nil {
		logger.Error("決済の失敗記録に失敗",
			zap.String("transaction_id", txnID),
			zap.Error(err),
		)
		return errors.Join(cause, err)
	}
	logger.Warn("決済が失敗しました",
		zap.String("transaction_id", txnID),
		zap.String("reason", reason),
	)
	return cause
}

func (s *PaymentService) issueInvoice(ctx context.Context, txn *payment.Transaction) *payment.Invoice {
	inv := payment.NewInvoice(txn.ID, payment.NewInvoiceNumber(), txn.Amount, s.gstRate)
	if err := s.paymentRepo.CreateInvoice(ctx, inv); err != nil {
		logger.Error("請求書の発行に失敗",
			zap.String("transaction_id", txn.ID),
			zap.Error(err),
		)
		return nil
	}
	return inv
}

// RetryPayment は失敗した決済を処理中に戻す（予約が保留中の場合のみ）
func (s *PaymentService) RetryPayment(ctx context.Context, transactionID, userID string) (*payment.Transaction, error) {
	var txn *payment.Transaction
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		txn, err = s.paymentRepo.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if txn.UserID != userID {
			return payment.ErrTransactionNotFound
		}
		b, err := s.ledger.GetBooking(ctx, txn.BookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusPending {
			return booking.ErrInvalidTransition
		}
		if err := txn.Retry(); err != nil {
			return err
		}
		active, err := s.activeTransaction(ctx, txn.BookingID)
		if err != nil {
			return err
		}
		if active != nil {
			return payment.ErrActiveTransaction
		}
		txn.GatewayOrderID = newOrderID()
		txn.GatewayPaymentID = ""
		return s.paymentRepo.Update(ctx, tx, txn)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("決済を再試行します", zap.String("transaction_id", txn.ID))
	return txn, nil
}

// AddPaymentMethod は支払い方法を登録する
func (s *PaymentService) AddPaymentMethod(ctx context.Context, userID string, typ payment.MethodType, label string) (*payment.Method, error) {
	m := payment.NewMethod(userID, typ, label)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.methodRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *PaymentService) ListPaymentMethods(ctx context.Context, userID string) ([]*payment.Method, error) {
	return s.methodRepo.ListByUserID(ctx, userID)
}

// SetDefaultPaymentMethod は既定の支払い方法を1つのトランザクションで切り替える
func (s *PaymentService) SetDefaultPaymentMethod(ctx context.Context, userID, methodID string) error {
	return transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		return s.methodRepo.SetDefault(ctx, tx, userID, methodID)
	})
}
