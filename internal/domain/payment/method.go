package payment

import "time"

// MethodType は支払い方法の種類
type MethodType string

const (
	MethodCreditCard MethodType = "CREDIT_CARD"
	MethodDebitCard  MethodType = "DEBIT_CARD"
	MethodUPI        MethodType = "UPI"
	MethodNetBanking MethodType = "NET_BANKING"
	MethodWallet     MethodType = "WALLET"
)

// Method はユーザーが登録した支払い方法
// ユーザーごとに IsDefault が true のものは高々1件
type Method struct {
	ID        string
	UserID    string
	Type      MethodType
	Label     string
	IsDefault bool
	Active    bool
	CreatedAt time.Time
}

// NewMethod は有効な支払い方法を作成する（既定フラグは SetDefault で設定する）
func NewMethod(userID string, typ MethodType, label string) *Method {
	return &Method{
		UserID:    userID,
		Type:      typ,
		Label:     label,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

func (m *Method) Validate() error {
	switch m.Type {
	case MethodCreditCard, MethodDebitCard, MethodUPI, MethodNetBanking, MethodWallet:
		return nil
	}
	return ErrInvalidMethodType
}
