package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultGSTRate は請求書の既定の税率（GST 18%）
var DefaultGSTRate = decimal.RequireFromString("0.18")

// Invoice は成功した決済に対する請求書
type Invoice struct {
	ID            string
	InvoiceNumber string
	TransactionID string
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	IssuedAt      time.Time
	DueAt         time.Time
}

// NewInvoice は小計と税率から請求書を作成する（税額は小数第2位で丸める）
func NewInvoice(transactionID, invoiceNumber string, subtotal, taxRate decimal.Decimal) *Invoice {
	now := time.Now()
	tax := subtotal.Mul(taxRate).Round(2)
	return &Invoice{
		ID:            uuid.New().String(),
		InvoiceNumber: invoiceNumber,
		TransactionID: transactionID,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		TotalAmount:   subtotal.Add(tax),
		IssuedAt:      now,
		DueAt:         now.AddDate(0, 0, 30),
	}
}

// NewInvoiceNumber は "NOM" + 英大文字・数字8文字の請求書番号を返す
func NewInvoiceNumber() string {
	return "NOM" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
