package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/sanosuguru/nomado-booking-ledger/internal/domain/resource"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// IDGenerator は予約番号を採番する
type IDGenerator interface {
	Generate(res *resource.Resource) (string, error)
}

// RandomIDGenerator は接頭辞とランダムな英大文字・数字で予約番号を作る
//
//	ホテル: NOM + 10文字
//	路線:   NMF / NMT / NMB + 8文字（交通手段ごと）
type RandomIDGenerator struct{}

func NewRandomIDGenerator() *RandomIDGenerator { return &RandomIDGenerator{} }

func (g *RandomIDGenerator) Generate(res *resource.Resource) (string, error) {
	prefix, n := idShape(res)
	suffix, err := randomString(n)
	if err != nil {
		return "", fmt.Errorf("予約番号の生成に失敗: %w", err)
	}
	return prefix + suffix, nil
}

func idShape(res *resource.Resource) (string, int) {
	if res.Kind != resource.KindRoute {
		return "NOM", 10
	}
	switch res.TransportType {
	case resource.TransportFlight:
		return "NMF", 8
	case resource.TransportTrain:
		return "NMT", 8
	case resource.TransportBus:
		return "NMB", 8
	}
	return "NOM", 8
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(idAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = idAlphabet[idx.Int64()]
	}
	return string(b), nil
}
