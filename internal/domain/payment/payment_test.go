package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

func TestTransaction_Lifecycle(t *testing.T) {
	tx := NewTransaction("user-1", "NOMABCDEFGHIJ", TypeFor(resource.KindHotel), decimal.NewFromInt(12000), "INR")
	require.NoError(t, tx.Validate())
	assert.Equal(t, StatusProcessing, tx.Status)
	assert.Equal(t, TypeHotelBooking, tx.Type)
	assert.NotEmpty(t, tx.ID)

	require.NoError(t, tx.MarkFailed("card declined"))
	assert.Equal(t, StatusFailed, tx.Status)
	assert.ErrorIs(t, tx.MarkSuccess("pay_1"), ErrTransactionNotPending)

	require.NoError(t, tx.Retry())
	assert.Equal(t, StatusProcessing, tx.Status)
	assert.Empty(t, tx.FailureReason)

	require.NoError(t, tx.MarkSuccess("pay_1"))
	assert.Equal(t, "pay_1", tx.GatewayPaymentID)
	assert.NotNil(t, tx.CompletedAt)
	assert.ErrorIs(t, tx.Retry(), ErrTransactionNotRetry)
}

func TestTransaction_Validate(t *testing.T) {
	tx := NewTransaction("user-1", "NMB12345678", TypeFor(resource.KindRoute), decimal.Zero, "INR")
	assert.ErrorIs(t, tx.Validate(), ErrInvalidAmount)
	assert.Equal(t, TypeTransportBooking, tx.Type)
}

func TestNewInvoice(t *testing.T) {
	inv := NewInvoice("tx-1", "NOM12345678", decimal.RequireFromString("12000"), DefaultGSTRate)
	assert.Equal(t, "2160", inv.TaxAmount.String())
	assert.Equal(t, "14160", inv.TotalAmount.String())
	assert.True(t, inv.DueAt.After(inv.IssuedAt))

	inv = NewInvoice("tx-2", "NOM87654321", decimal.RequireFromString("999.99"), DefaultGSTRate)
	assert.Equal(t, "180", inv.TaxAmount.String())
	assert.Equal(t, "1179.99", inv.TotalAmount.String())
}

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("secret")
	sig := v.Sign("order_1", "pay_1")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		wantErr   bool
	}{
		{"正しい署名", "order_1", "pay_1", sig, false},
		{"改ざんされた署名", "order_1", "pay_1", tamper(sig), true},
		{"別の決済ID", "order_1", "pay_2", sig, true},
		{"署名なし", "order_1", "pay_1", "", true},
		{"注文IDなし", "", "pay_1", sig, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Verify(tt.orderID, tt.paymentID, tt.signature)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignature)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("シークレット未設定では常に失敗", func(t *testing.T) {
		assert.ErrorIs(t, NewHMACVerifier("").Verify("order_1", "pay_1", sig), ErrInvalidSignature)
	})
}

func tamper(sig string) string {
	last := byte('0')
	if sig[len(sig)-1] == '0' {
		last = '1'
	}
	return sig[:len(sig)-1] + string(last)
}

func TestMethod_Validate(t *testing.T) {
	tests := []struct {
		name    string
		typ     MethodType
		wantErr error
	}{
		{"UPIは有効", MethodUPI, nil},
		{"クレジットカードは有効", MethodCreditCard, nil},
		{"未知の種類はエラー", MethodType("CASH"), ErrInvalidMethodType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMethod("user-1", tt.typ, "label")
			assert.True(t, m.Active)
			assert.False(t, m.IsDefault)
			assert.ErrorIs(t, m.Validate(), tt.wantErr)
		})
	}
}

func TestNewInvoiceNumber(t *testing.T) {
	n := NewInvoiceNumber()
	assert.Regexp(t, `^NOM[0-9A-F]{8}$`, n)
	assert.NotEqual(t, n, NewInvoiceNumber())
}
