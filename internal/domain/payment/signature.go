package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier は決済ゲートウェイの署名を検証する
type SignatureVerifier interface {
	Verify(orderID, paymentID, signature string) error
}

// HMACVerifier は "order_id|payment_id" の HMAC-SHA256（16進）で署名を検証する
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Sign は期待される署名を返す
func (v *HMACVerifier) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *HMACVerifier) Verify(orderID, paymentID, signature string) error {
	if len(v.secret) == 0 || orderID == "" || paymentID == "" || signature == "" {
		return ErrInvalidSignature
	}
	expected := v.Sign(orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
