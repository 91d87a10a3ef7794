package password

import (
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

var cost atomic.Int64

func init() {
	cost.Store(int64(bcrypt.DefaultCost))
}

// SetCost changes the bcrypt cost used by Hash. Values outside bcrypt's
// accepted range fall back to the default.
func SetCost(c int) {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		c = bcrypt.DefaultCost
	}
	cost.Store(int64(c))
}

func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), int(cost.Load()))
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
