package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/nomado-booking-ledger/internal/config"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
	"github.com/sanosuguru/nomado-booking-ledger/internal/pkg/logger"
)

// LedgerService は予約台帳の操作（見積もり・予約・確定・取消・完了）を提供する
//
// 在庫を減らすのは Confirm だけで、Reserve は時点の空き確認のみを行う。
// そのため保留中の予約の合計は在庫を超えうるが、Confirm の条件付き減算により
// 確定済みの数量が総在庫を超えることはない。
type LedgerService struct {
	txManager    transaction.Manager
	resourceRepo resource.Repository
	bookingRepo  booking.Repository
	idGenerator  booking.IDGenerator
	cfg          config.LedgerConfig

	cache     AvailabilityCache
	publisher EventPublisher
	recorder  Recorder
}

// LedgerOption は LedgerService の任意の依存を設定する
type LedgerOption func(*LedgerService)

func WithAvailabilityCache(c AvailabilityCache) LedgerOption {
	return func(s *LedgerService) { s.cache = c }
}

func WithEventPublisher(p EventPublisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = p }
}

func WithRecorder(r Recorder) LedgerOption {
	return func(s *LedgerService) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewLedgerService(
	tm transaction.Manager,
	rr resource.Repository,
	br booking.Repository,
	idGen booking.IDGenerator,
	cfg config.LedgerConfig,
	opts ...LedgerOption,
) *LedgerService {
	if cfg.BookingIDAttempts <= 0 {
		cfg.BookingIDAttempts = 5
	}
	if cfg.CompletionBatch <= 0 {
		cfg.CompletionBatch = 500
	}
	s := &LedgerService{
		txManager:    tm,
		resourceRepo: rr,
		bookingRepo:  br,
		idGenerator:  idGen,
		cfg:          cfg,
		recorder:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type QuoteInput struct {
	ResourceID string
	Quantity   int
	Dates      booking.DateRange
}

// Quote はリソースの現在価格で料金を計算する（状態は変更しない）
func (s *LedgerService) Quote(ctx context.Context, input QuoteInput) (booking.Quote, error) {
	res, err := s.resourceRepo.GetByID(ctx, input.ResourceID)
	if err != nil {
		return booking.Quote{}, err
	}
	return booking.NewQuote(res, input.Quantity, input.Dates)
}

type ReserveInput struct {
	UserID          string
	ResourceID      string
	Quantity        int
	Dates           booking.DateRange
	Contact         booking.Contact
	SpecialRequests string
}

// Reserve は保留中の予約を作成する
// 空き在庫は確認するが減算しない。予約番号が衝突した場合は新しい番号で再試行する
func (s *LedgerService) Reserve(ctx context.Context, input ReserveInput) (*booking.Booking, error) {
	if input.UserID == "" {
		return nil, booking.ErrUserIDRequired
	}
	res, err := s.resourceRepo.GetByID(ctx, input.ResourceID)
	if err != nil {
		return nil, err
	}
	if !res.Active {
		return nil, resource.ErrResourceInactive
	}

	q, err := booking.NewQuote(res, input.Quantity, input.Dates)
	if err != nil {
		return nil, err
	}
	if !res.HasCapacity(q.Quantity) {
		s.recorder.ObserveTransition("reserve", "capacity")
		return nil, resource.ErrInsufficientCapacity
	}

	b := booking.NewBooking(input.UserID, res, input.Dates, q, input.Contact, input.SpecialRequests)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	if err := s.createWithFreshID(ctx, res, b); err != nil {
		s.recorder.ObserveTransition("reserve", "error")
		return nil, err
	}

	s.recorder.ObserveTransition("reserve", "success")
	logger.Info("予約を作成しました",
		zap.String("booking_id", b.BookingID),
		zap.String("resource_id", b.ResourceID),
		zap.Int("quantity", b.Quantity),
		zap.String("total_amount", b.TotalAmount.String()),
	)
	s.publish(ctx, booking.EventReserved, b)
	return b, nil
}

func (s *LedgerService) createWithFreshID(ctx context.Context, res *resource.Resource, b *booking.Booking) error {
	for attempt := 1; attempt <= s.cfg.BookingIDAttempts; attempt++ {
		id, err := s.idGenerator.Generate(res)
		if err != nil {
			return err
		}
		b.BookingID = id
		err = s.bookingRepo.Create(ctx, b)
		if err == nil {
			return nil
		}
		if !errors.Is(err, booking.ErrBookingIDConflict) {
			return err
		}
		logger.Warn("予約番号が衝突したため再採番します",
			zap.String("booking_id", id),
			zap.Int("attempt", attempt),
		)
	}
	b.BookingID = ""
	return booking.ErrBookingIDExhausted
}

// Confirm は予約を確定し在庫を減算する
// 既に確定済みなら何もしない。減算は条件付きUPDATE 1文で行い、空きが足りなければ
// resource.ErrInsufficientCapacity を返して何も確定しない
func (s *LedgerService) Confirm(ctx context.Context, bookingID string) (*booking.Booking, error) {
	var b *booking.Booking
	var changed bool
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		b, err = s.bookingRepo.GetForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		changed, err = b.Confirm()
		if err != nil || !changed {
			return err
		}
		if err := s.resourceRepo.DecrementCapacity(ctx, tx, b.ResourceID, b.Quantity); err != nil {
			return err
		}
		return s.bookingRepo.UpdateStatus(ctx, tx, b)
	})
	if err != nil {
		if errors.Is(err, resource.ErrInsufficientCapacity) {
			s.recorder.ObserveCapacityConflict(string(b.ResourceKind))
			s.recorder.ObserveTransition("confirm", "capacity")
			logger.Warn("空き不足のため確定できませんでした",
				zap.String("booking_id", bookingID),
				zap.String("resource_id", b.ResourceID),
				zap.Int("quantity", b.Quantity),
			)
		} else {
			s.recorder.ObserveTransition("confirm", "error")
		}
		return nil, err
	}
	if !changed {
		s.recorder.ObserveTransition("confirm", "noop")
		return b, nil
	}

	s.recorder.ObserveTransition("confirm", "success")
	logger.Info("予約を確定しました",
		zap.String("booking_id", b.BookingID),
		zap.String("resource_id", b.ResourceID),
		zap.Int("quantity", b.Quantity),
	)
	s.invalidate(ctx, b.ResourceID)
	s.publish(ctx, booking.EventConfirmed, b)
	return b, nil
}

// Cancel は予約を取り消す
// 確定時に在庫を減算していた場合のみ同じトランザクションで在庫を戻す
func (s *LedgerService) Cancel(ctx context.Context, bookingID string) (*booking.Booking, error) {
	var b *booking.Booking
	var restored bool
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		b, err = s.bookingRepo.GetForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		restored, err = b.Cancel()
		if err != nil {
			return err
		}
		if restored {
			if err := s.resourceRepo.RestoreCapacity(ctx, tx, b.ResourceID, b.Quantity); err != nil {
				return err
			}
		}
		return s.bookingRepo.UpdateStatus(ctx, tx, b)
	})
	if err != nil {
		s.recorder.ObserveTransition("cancel", "error")
		return nil, err
	}

	s.recorder.ObserveTransition("cancel", "success")
	logger.Info("予約を取り消しました",
		zap.String("booking_id", b.BookingID),
		zap.String("resource_id", b.ResourceID),
		zap.Bool("capacity_restored", restored),
	)
	if restored {
		s.invalidate(ctx, b.ResourceID)
	}
	s.publish(ctx, booking.EventCancelled, b)
	return b, nil
}

// MarkCompleted は確定済みの予約を利用完了にする（在庫は戻さない）
func (s *LedgerService) MarkCompleted(ctx context.Context, bookingID string) (*booking.Booking, error) {
	return s.settle(ctx, bookingID, "complete", booking.EventCompleted, (*booking.Booking).MarkCompleted)
}

// MarkNoShow は確定済みの予約を不泊・不乗にする（在庫は戻さない）
func (s *LedgerService) MarkNoShow(ctx context.Context, bookingID string) (*booking.Booking, error) {
	return s.settle(ctx, bookingID, "no_show", booking.EventNoShow, (*booking.Booking).MarkNoShow)
}

func (s *LedgerService) settle(ctx context.Context, bookingID, operation string, eventType booking.EventType, transition func(*booking.Booking) error) (*booking.Booking, error) {
	var b *booking.Booking
	err := transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		var err error
		b, err = s.bookingRepo.GetForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if err := transition(b); err != nil {
			return err
		}
		return s.bookingRepo.UpdateStatus(ctx, tx, b)
	})
	if err != nil {
		s.recorder.ObserveTransition(operation, "error")
		return nil, err
	}
	s.recorder.ObserveTransition(operation, "success")
	logger.Info("予約を終了しました",
		zap.String("booking_id", b.BookingID),
		zap.String("status", string(b.Status)),
	)
	s.publish(ctx, eventType, b)
	return b, nil
}

func (s *LedgerService) GetBooking(ctx context.Context, bookingID string) (*booking.Booking, error) {
	return s.bookingRepo.GetByBookingID(ctx, bookingID)
}

// GetBookingForUser は本人の予約のみ返す（他人の予約は存在しないものとして扱う）
func (s *LedgerService) GetBookingForUser(ctx context.Context, bookingID, userID string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, booking.ErrBookingNotFound
	}
	return b, nil
}

func (s *LedgerService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	limit, offset = normalizePage(limit, offset)
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

// CompleteElapsedBookings は利用最終日が now より前の確定済み予約を利用完了にする
// 個別の失敗は記録して続行し、完了件数とまとめたエラーを返す
func (s *LedgerService) CompleteElapsedBookings(ctx context.Context, now time.Time) (int, error) {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	ids, err := s.bookingRepo.ListConfirmedEndedBefore(ctx, today, s.cfg.CompletionBatch)
	if err != nil {
		return 0, fmt.Errorf("利用終了予約の取得に失敗: %w", err)
	}

	completed := 0
	var errs []error
	for _, id := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.MarkCompleted(ctx, id); err != nil {
			// 取得後に取消・完了された予約は対象外
			if errors.Is(err, booking.ErrInvalidTransition) {
				continue
			}
			logger.Error("利用完了への更新に失敗",
				zap.String("booking_id", id),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		completed++
	}
	return completed, errors.Join(errs...)
}

// invalidate と publish はコミット後の副作用。失敗してもログのみで結果は変えない

func (s *LedgerService) invalidate(ctx context.Context, resourceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, resourceID); err != nil {
		logger.Warn("空き在庫キャッシュの無効化に失敗",
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
	}
}

func (s *LedgerService) publish(ctx context.Context, typ booking.EventType, b *booking.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBookingEvent(ctx, booking.NewEvent(typ, b)); err != nil {
		logger.Warn("予約イベントの送信に失敗",
			zap.String("booking_id", b.BookingID),
			zap.String("type", string(typ)),
			zap.Error(err),
		)
	}
}
