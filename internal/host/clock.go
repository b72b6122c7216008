package host

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// SystemClock 使用本机时间
type SystemClock struct{}

func (SystemClock) Now(context.Context) (uint64, error) {
	return uint64(time.Now().Unix()), nil
}

// ManualClock 手动设置的时钟，用于测试和调试模式
type ManualClock struct {
	mu  sync.RWMutex
	now uint64
}

// NewManualClock 创建手动时钟
func NewManualClock(now uint64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now(context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now, nil
}

// Set 设置当前时间
func (c *ManualClock) Set(now uint64) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Advance 时间前进 d 秒
func (c *ManualClock) Advance(d uint64) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

// HeaderReader 读取区块头
type HeaderReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
}

// ChainClock 以最新区块时间戳作为当前时间
type ChainClock struct {
	reader HeaderReader
}

// NewChainClock 创建链上时钟
func NewChainClock(reader HeaderReader) *ChainClock {
	return &ChainClock{reader: reader}
}

// DialChainClock 连接 RPC 节点并创建链上时钟
func DialChainClock(ctx context.Context, rpcURL string) (*ChainClock, *ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to chain rpc: %w", err)
	}
	return NewChainClock(client), client, nil
}

func (c *ChainClock) Now(ctx context.Context) (uint64, error) {
	header, err := c.reader.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest header: %w", err)
	}
	return header.Time, nil
}
