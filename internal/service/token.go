package service

import (
	"crypto/rand"
	"math/big"
)

// tokenAlphabet drops 0/O and 1/I so tokens survive being read aloud.
const tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewTokenGenerator returns a source of random uppercase booking tokens of length n.
func NewTokenGenerator(n int) func() string {
	if n <= 0 {
		n = 8
	}
	max := big.NewInt(int64(len(tokenAlphabet)))
	return func() string {
		b := make([]byte, n)
		for i := range b {
			idx, err := rand.Int(rand.Reader, max)
			if err != nil {
				panic("crypto/rand unavailable: " + err.Error())
			}
			b[i] = tokenAlphabet[idx.Int64()]
		}
		return string(b)
	}
}
