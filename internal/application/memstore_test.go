package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/booking"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/transaction"
)

// memStore はシナリオテスト用のインメモリ台帳
// トランザクションは txMu で直列化し、ロールバック時は undo を逆順に適用する
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	resources map[string]*resource.Resource
	bookings  map[string]*booking.Booking
}

func newMemStore() *memStore {
	return &memStore{
		resources: make(map[string]*resource.Resource),
		bookings:  make(map[string]*booking.Booking),
	}
}

var errNotMemTx = errors.New("memTx ではありません")

type memTx struct {
	s    *memStore
	undo []func()
	done bool
}

func (s *memStore) Begin(ctx context.Context) (transaction.Tx, error) {
	s.txMu.Lock()
	return &memTx{s: s}, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.s.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.s.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.s.mu.Unlock()
	t.done = true
	t.s.txMu.Unlock()
	return nil
}

func asMemTx(tx transaction.Tx) (*memTx, error) {
	mt, ok := tx.(*memTx)
	if !ok || mt.done {
		return nil, errNotMemTx
	}
	return mt, nil
}

func (s *memStore) available(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resources[id].AvailableCapacity
}

func (s *memStore) status(bookingID string) booking.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[bookingID].Status
}

// memResources は resource.Repository のインメモリ実装
type memResources struct{ s *memStore }

var _ resource.Repository = memResources{}

func (r memResources) Create(ctx context.Context, res *resource.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *res
	r.s.resources[res.ID] = &c
	return nil
}

func (r memResources) GetByID(ctx context.Context, id string) (*resource.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return nil, resource.ErrResourceNotFound
	}
	c := *res
	return &c, nil
}

func (r memResources) List(ctx context.Context, kind resource.Kind, limit, offset int) ([]*resource.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*resource.Resource
	for _, res := range r.s.resources {
		if kind == "" || res.Kind == kind {
			c := *res
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memResources) DecrementCapacity(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return resource.ErrResourceNotFound
	}
	if res.AvailableCapacity < quantity {
		return resource.ErrInsufficientCapacity
	}
	res.AvailableCapacity -= quantity
	mt.undo = append(mt.undo, func() { res.AvailableCapacity += quantity })
	return nil
}

func (r memResources) RestoreCapacity(ctx context.Context, tx transaction.Tx, id string, quantity int) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return resource.ErrResourceNotFound
	}
	if res.AvailableCapacity+quantity > res.TotalCapacity {
		return resource.ErrCapacityOverflow
	}
	res.AvailableCapacity += quantity
	mt.undo = append(mt.undo, func() { res.AvailableCapacity -= quantity })
	return nil
}

func (r memResources) CountAvailable(ctx context.Context, id string) (int, error) {
	res, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return res.AvailableCapacity, nil
}

// memBookings は booking.Repository のインメモリ実装
type memBookings struct{ s *memStore }

var _ booking.Repository = memBookings{}

func (r memBookings) Create(ctx context.Context, b *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[b.BookingID]; ok {
		return booking.ErrBookingIDConflict
	}
	c := *b
	r.s.bookings[b.BookingID] = &c
	return nil
}

func (r memBookings) GetByBookingID(ctx context.Context, bookingID string) (*booking.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[bookingID]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	c := *b
	return &c, nil
}

func (r memBookings) GetForUpdate(ctx context.Context, tx transaction.Tx, bookingID string) (*booking.Booking, error) {
	if _, err := asMemTx(tx); err != nil {
		return nil, err
	}
	return r.GetByBookingID(ctx, bookingID)
}

func (r memBookings) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memBookings) UpdateStatus(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.bookings[b.BookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	c := *b
	r.s.bookings[b.BookingID] = &c
	mt.undo = append(mt.undo, func() { r.s.bookings[b.BookingID] = prev })
	return nil
}

func (r memBookings) ListConfirmedEndedBefore(ctx context.Context, before time.Time, limit int) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, b := range r.s.bookings {
		if b.Status == booking.StatusConfirmed && b.HasEnded(before) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}
