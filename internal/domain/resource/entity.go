package resource

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind は予約対象の種別を表す
type Kind string

const (
	KindHotel Kind = "hotel"
	KindRoute Kind = "route"
)

// TransportType は路線の交通手段を表す（路線のみ）
type TransportType string

const (
	TransportFlight TransportType = "FLIGHT"
	TransportTrain  TransportType = "TRAIN"
	TransportBus    TransportType = "BUS"
)

// Resource は予約可能な在庫単位（ホテルまたは路線）を表す
type Resource struct {
	ID                string
	Kind              Kind
	Name              string
	City              string
	TransportType     TransportType
	UnitPrice         decimal.Decimal
	TotalCapacity     int
	AvailableCapacity int
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int // 在庫を更新するたびに増える
}

// NewResource は空き在庫が総在庫と等しい状態で新しいリソースを作成する
func NewResource(kind Kind, name, city string, transportType TransportType, unitPrice decimal.Decimal, totalCapacity int) *Resource {
	now := time.Now()
	return &Resource{
		Kind:              kind,
		Name:              name,
		City:              city,
		TransportType:     transportType,
		UnitPrice:         unitPrice,
		TotalCapacity:     totalCapacity,
		AvailableCapacity: totalCapacity,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// HasCapacity は指定数量を現時点で受け入れられるかを返す（時点チェックのみ）
func (r *Resource) HasCapacity(quantity int) bool {
	return quantity <= r.AvailableCapacity
}

// IsDateRanged は宿泊数で料金が決まるリソースかを返す
func (r *Resource) IsDateRanged() bool {
	return r.Kind == KindHotel
}

// Decrement は空き在庫を減らす
// 永続化層の条件付きUPDATEと同じ規則をメモリ上で適用する
func (r *Resource) Decrement(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if r.AvailableCapacity-quantity < 0 {
		return ErrInsufficientCapacity
	}
	r.AvailableCapacity -= quantity
	r.UpdatedAt = time.Now()
	return nil
}

// Restore は空き在庫を戻す
func (r *Resource) Restore(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if r.AvailableCapacity+quantity > r.TotalCapacity {
		return ErrCapacityOverflow
	}
	r.AvailableCapacity += quantity
	r.UpdatedAt = time.Now()
	return nil
}

// Validate はリソースの検証を行う
func (r *Resource) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	switch r.Kind {
	case KindHotel:
	case KindRoute:
		switch r.TransportType {
		case TransportFlight, TransportTrain, TransportBus:
		default:
			return ErrInvalidTransportType
		}
	default:
		return ErrInvalidKind
	}
	if r.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if r.TotalCapacity < 1 {
		return ErrInvalidTotalCapacity
	}
	if r.AvailableCapacity < 0 || r.AvailableCapacity > r.TotalCapacity {
		return ErrCapacityOutOfBounds
	}
	return nil
}
