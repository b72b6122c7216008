package host

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHeaderReader struct {
	header *types.Header
	err    error
	number *big.Int
}

func (f *fakeHeaderReader) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	f.number = number
	return f.header, f.err
}

func TestManualClock(t *testing.T) {
	ctx := context.Background()
	c := NewManualClock(100)

	now, err := c.Now(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), now)

	c.Advance(5)
	now, _ = c.Now(ctx)
	assert.Equal(t, uint64(105), now)

	c.Set(42)
	now, _ = c.Now(ctx)
	assert.Equal(t, uint64(42), now)
}

func TestSystemClock(t *testing.T) {
	before := uint64(time.Now().Unix())
	now, err := SystemClock{}.Now(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, now, before)
}

func TestChainClock(t *testing.T) {
	t.Run("使用最新区块时间", func(t *testing.T) {
		reader := &fakeHeaderReader{header: &types.Header{Number: big.NewInt(12), Time: 1_700_000_123}}
		now, err := NewChainClock(reader).Now(context.Background())
		require.NoError(t, err)
		assert.Equal(t, uint64(1_700_000_123), now)
		assert.Nil(t, reader.number)
	})

	t.Run("节点错误", func(t *testing.T) {
		reader := &fakeHeaderReader{err: errors.New("connection refused")}
		_, err := NewChainClock(reader).Now(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
