package booking

import "time"

// DateRange は予約の日付範囲を表す
// 路線予約では Start（乗車日）のみを使用し End はゼロ値
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewStay はチェックイン日とチェックアウト日から範囲を作成する
func NewStay(checkIn, checkOut time.Time) DateRange {
	return DateRange{Start: truncateDate(checkIn), End: truncateDate(checkOut)}
}

// NewTravel は乗車日から範囲を作成する
func NewTravel(travelDate time.Time) DateRange {
	return DateRange{Start: truncateDate(travelDate)}
}

// Nights は宿泊数を返す
func (d DateRange) Nights() int {
	return int(d.End.Sub(d.Start).Hours() / 24)
}

// LastDay は利用の最終日を返す（宿泊はチェックアウト日、乗車は乗車日）
func (d DateRange) LastDay() time.Time {
	if d.End.IsZero() {
		return d.Start
	}
	return d.End
}

func truncateDate(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
