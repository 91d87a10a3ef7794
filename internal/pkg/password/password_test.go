package password

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaultCost(t *testing.T) {
	require.Equal(t, int64(bcrypt.DefaultCost), cost.Load())
	hash, err := Hash("123123")
	require.NoError(t, err)
	c, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, c)
}

func TestHashAndCompare(t *testing.T) {
	SetCost(bcrypt.MinCost)
	defer SetCost(bcrypt.DefaultCost)

	hash, err := Hash("123123")
	require.NoError(t, err)
	require.NotEqual(t, "123123", hash)
	require.NoError(t, Compare(hash, "123123"))
	require.Error(t, Compare(hash, "123124"))

	c, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, c)
}

func TestSetCostOutOfRange(t *testing.T) {
	SetCost(1)
	require.Equal(t, int64(bcrypt.DefaultCost), cost.Load())
	SetCost(bcrypt.MaxCost + 1)
	require.Equal(t, int64(bcrypt.DefaultCost), cost.Load())
}
