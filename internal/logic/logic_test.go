package logic

import (
	"context"
	"math"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/blues/crowdfund/internal/host"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deadline uint64 = 1_700_000_000

var owner = common.HexToAddress("0x1111111111111111111111111111111111111111")

func newLogic(t *testing.T) (*CampaignLogic, *AccountLogic, *EventLogic) {
	t.Helper()
	st := store.NewMemoryStore()
	bank := host.NewBank(nil)
	l := ledger.New(st, host.NewManualClock(deadline-100), bank, common.HexToAddress("0x01"))
	serial := NewSerializer()
	return NewCampaignLogic(l, serial), NewAccountLogic(st, bank, serial), NewEventLogic(st, l)
}

func TestCreateCampaignValidation(t *testing.T) {
	campaigns, _, _ := newLogic(t)
	ctx := context.Background()

	t.Run("标题为空", func(t *testing.T) {
		_, err := campaigns.CreateCampaign(ctx, owner, ledger.CampaignParams{Target: big.NewInt(1), Deadline: deadline})
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("标题过长", func(t *testing.T) {
		_, err := campaigns.CreateCampaign(ctx, owner, ledger.CampaignParams{
			Title:    strings.Repeat("众", maxTitleLength+1),
			Target:   big.NewInt(1),
			Deadline: deadline,
		})
		assert.ErrorIs(t, err, ErrInvalidParams)
	})

	t.Run("创建成功", func(t *testing.T) {
		c, err := campaigns.CreateCampaign(ctx, owner, ledger.CampaignParams{
			Title:    strings.Repeat("众", maxTitleLength),
			Target:   big.NewInt(1),
			Deadline: deadline,
		})
		require.NoError(t, err)

		view, err := campaigns.GetCampaign(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusFunding, view.Status)
	})
}

// TestConcurrentPledges 并发出资经全局锁串行执行，合计不丢失
func TestConcurrentPledges(t *testing.T) {
	campaigns, accounts, events := newLogic(t)
	ctx := context.Background()

	c, err := campaigns.CreateCampaign(ctx, owner, ledger.CampaignParams{
		Title:    "parallel",
		Target:   big.NewInt(1_000_000),
		Deadline: deadline,
	})
	require.NoError(t, err)

	pledgers := make([]common.Address, 8)
	for i := range pledgers {
		pledgers[i] = common.BigToAddress(big.NewInt(int64(1000 + i)))
		_, err := accounts.Mint(ctx, pledgers[i], big.NewInt(100))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, p := range pledgers {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(p common.Address) {
				defer wg.Done()
				assert.NoError(t, campaigns.Pledge(ctx, c.ID, p, big.NewInt(3)))
			}(p)
		}
	}
	wg.Wait()

	view, err := campaigns.GetCampaign(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "240", view.Campaign.TotalRaised.String())

	balance, err := accounts.GetBalance(ctx, view.Campaign.Custody)
	require.NoError(t, err)
	assert.Equal(t, "240", balance.String())

	list, total, err := events.GetEvents(ctx, c.ID, 1, 5)
	require.NoError(t, err)
	assert.Len(t, list, 5)
	assert.Equal(t, int64(81), total)

	list, _, err = events.GetEvents(ctx, c.ID, 17, 5)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, uint64(81), list[0].ID)

	list, _, err = events.GetEvents(ctx, c.ID, 100, 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, total, err = events.GetEvents(ctx, c.ID, math.MaxInt, 100)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(81), total)
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(1, 10))
	assert.Equal(t, 20, pageOffset(3, 10))
	assert.Equal(t, 0, pageOffset(0, 10))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt, 100))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt/100+2, 100))
}

func TestEventLogicMissingCampaign(t *testing.T) {
	_, _, events := newLogic(t)

	_, _, err := events.GetEvents(context.Background(), 3, 1, 10)
	assert.ErrorIs(t, err, ledger.ErrCampaignNotFound)
	_, err = events.GetStats(context.Background(), 3)
	assert.ErrorIs(t, err, ledger.ErrCampaignNotFound)
}
