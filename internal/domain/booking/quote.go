package booking

import (
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

// Quote は料金見積もりを表す
// TotalAmount は常に UnitPrice * Quantity * Duration から算出され単独では保持しない
type Quote struct {
	UnitPrice   decimal.Decimal
	Quantity    int
	Duration    int
	TotalAmount decimal.Decimal
}

// NewQuote はリソースの現在価格で見積もりを計算する（副作用なし）
func NewQuote(res *resource.Resource, quantity int, dates DateRange) (Quote, error) {
	if quantity < 1 {
		return Quote{}, ErrInvalidQuantity
	}
	duration, err := durationFactor(res, dates)
	if err != nil {
		return Quote{}, err
	}
	return newQuote(res.UnitPrice, quantity, duration), nil
}

func newQuote(unitPrice decimal.Decimal, quantity, duration int) Quote {
	return Quote{
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Duration:  duration,
		TotalAmount: unitPrice.
			Mul(decimal.NewFromInt(int64(quantity))).
			Mul(decimal.NewFromInt(int64(duration))),
	}
}

// durationFactor はホテルなら宿泊数、路線なら1を返す
func durationFactor(res *resource.Resource, dates DateRange) (int, error) {
	if dates.Start.IsZero() {
		if res.IsDateRanged() {
			return 0, ErrInvalidRange
		}
		return 0, ErrTravelDateRequired
	}
	if !res.IsDateRanged() {
		return 1, nil
	}
	if !dates.End.After(dates.Start) {
		return 0, ErrInvalidRange
	}
	nights := dates.Nights()
	if nights < 1 {
		return 0, ErrInvalidRange
	}
	return nights, nil
}
