package store_test

import (
	"context"
	"errors"
	"math"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/blues/crowdfund/internal/database"
	"github.com/blues/crowdfund/internal/event"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStore 同时满足账本存储、事件日志和事件查询
type testStore interface {
	ledger.Store
	event.Log
	Events(ctx context.Context, campaignID uint64, offset, limit int) ([]ledger.Event, int64, error)
	UseSignature(ctx context.Context, key common.Hash, caller common.Address, expiresAt int64) (bool, error)
	PruneSignatures(ctx context.Context, before int64) (int64, error)
}

var (
	owner = common.HexToAddress("0x1111111111111111111111111111111111111111")
	alice = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob   = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

func newGormStore(t *testing.T) *store.GormStore {
	t.Helper()
	db, err := database.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return store.NewGormStore(db)
}

// forEachStore 对每种存储实现运行同一组用例
func forEachStore(t *testing.T, fn func(t *testing.T, s testStore)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, store.NewMemoryStore())
	})
	t.Run("gorm", func(t *testing.T) {
		fn(t, newGormStore(t))
	})
}

func insertCampaign(t *testing.T, s testStore) *ledger.Campaign {
	t.Helper()
	c := &ledger.Campaign{
		Config: ledger.Config{
			Owner:    owner,
			Target:   big.NewInt(1000),
			Deadline: 500,
		},
		Title:       "solar panels",
		Description: "roof",
		TotalRaised: new(big.Int),
		CreatedAt:   100,
	}
	require.NoError(t, s.Atomic(context.Background(), func(tx ledger.Tx) error {
		return tx.InsertCampaign(c)
	}))
	return c
}

func TestCampaignRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, s testStore) {
		ctx := context.Background()
		c := insertCampaign(t, s)
		assert.Equal(t, uint64(1), c.ID)

		custody := ledger.CustodyAddress(common.HexToAddress("0x01"), c.ID)
		require.NoError(t, s.Atomic(ctx, func(tx ledger.Tx) error {
			loaded, err := tx.Campaign(c.ID)
			if err != nil {
				return err
			}
			loaded.Custody = custody
			loaded.TotalRaised = big.NewInt(250)
			loaded.Claimed = true
			return tx.UpdateCampaign(loaded)
		}))

		require.NoError(t, s.View(ctx, func(tx ledger.Tx) error {
			got, err := tx.Campaign(c.ID)
			require.NoError(t, err)
			assert.Equal(t, owner, got.Owner)
			assert.Equal(t, "1000", got.Target.String())
			assert.Equal(t, uint64(500), got.Deadline)
			assert.Equal(t, "solar panels", got.Title)
			assert.Equal(t, "roof", got.Description)
			assert.Equal(t, custody, got.Custody)
			assert.Equal(t, "250", got.TotalRaised.String())
			assert.True(t, got.Claimed)
			assert.Equal(t, uint64(100), got.CreatedAt)
			return nil
		}))

		err := s.View(ctx, func(tx ledger.Tx) error {
			_, err := tx.Campaign(42)
			return err
		})
		assert.ErrorIs(t, err, ledger.ErrCampaignNotFound)

		err = s.Atomic(ctx, func(tx ledger.Tx) error {
			return tx.UpdateCampaign(&ledger.Campaign{ID: 42, TotalRaised: new(big.Int)})
		})
		assert.ErrorIs(t, err, ledger.ErrCampaignNotFound)
	})
}

func TestContributions(t *testing.T) {
	forEachStore(t, func(t *testing.T, s testStore) {
		ctx := context.Background()
		c := insertCampaign(t, s)

		require.NoError(t, s.Atomic(ctx, func(tx ledger.Tx) error {
			amount, err := tx.Contribution(c.ID, alice)
			require.NoError(t, err)
			assert.Equal(t, 0, amount.Sign())

			require.NoError(t, tx.SetContribution(c.ID, bob, big.NewInt(30)))
			require.NoError(t, tx.SetContribution(c.ID, alice, big.NewInt(10)))
			return tx.SetContribution(c.ID, bob, big.NewInt(45))
		}))

		require.NoError(t, s.View(ctx, func(tx ledger.Tx) error {
			list, err := tx.Contributions(c.ID)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, bob, list[0].Pledger)
			assert.Equal(t, "45", list[0].Amount.String())
			assert.Equal(t, alice, list[1].Pledger)
			assert.Equal(t, "10", list[1].Amount.String())

			amount, err := tx.Contribution(c.ID, bob)
			require.NoError(t, err)
			assert.Equal(t, "45", amount.String())
			return nil
		}))
	})
}

func TestAtomicRollback(t *testing.T) {
	forEachStore(t, func(t *testing.T, s testStore) {
		ctx := context.Background()
		c := insertCampaign(t, s)
		boom := errors.New("boom")

		err := s.Atomic(ctx, func(tx ledger.Tx) error {
			require.NoError(t, tx.SetBalance(alice, big.NewInt(99)))
			require.NoError(t, tx.SetContribution(c.ID, alice, big.NewInt(99)))
			require.NoError(t, tx.AppendEvent(&ledger.Event{
				CampaignID: c.ID,
				Type:       ledger.EventContributionReceived,
				Account:    alice,
				Amount:     big.NewInt(99),
				Timestamp:  200,
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		require.NoError(t, s.View(ctx, func(tx ledger.Tx) error {
			balance, err := tx.Balance(alice)
			require.NoError(t, err)
			assert.Equal(t, 0, balance.Sign())

			amount, err := tx.Contribution(c.ID, alice)
			require.NoError(t, err)
			assert.Equal(t, 0, amount.Sign())
			return nil
		}))

		events, total, err := s.Events(ctx, c.ID, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Zero(t, total)
	})
}

func TestBalances(t *testing.T) {
	forEachStore(t, func(t *testing.T, s testStore) {
		ctx := context.Background()
		require.NoError(t, s.Atomic(ctx, func(tx ledger.Tx) error {
			require.NoError(t, tx.SetBalance(alice, big.NewInt(7)))
			return tx.SetBalance(alice, big.NewInt(8))
		}))

		require.NoError(t, s.View(ctx, func(tx ledger.Tx) error {
			balance, err := tx.Balance(alice)
			require.NoError(t, err)
			assert.Equal(t, "8", balance.String())

			balance, err = tx.Balance(bob)
			require.NoError(t, err)
			assert.Equal(t, 0, balance.Sign())
			return nil
		}))
	})
}

func TestEventLog(t *testing.T) {
	forEachStore(t, func(t *testing.T, s testStore) {
		ctx := context.Background()
		c := insertCampaign(t, s)

		appended := []*ledger.Event{
			{CampaignID: c.ID, Type: ledger.EventCampaignCreated, Account: owner, Amount: big.NewInt(1000), Timestamp: 100},
			{CampaignID: c.ID, Type: ledger.EventContributionReceived, Account: alice, Amount: big.NewInt(40), Timestamp: 110},
			{CampaignID: c.ID, Type: ledger.EventRefundIssued, Account: alice, Amount: big.NewInt(40), Timestamp: 600},
		}
		require.NoError(t, s.Atomic(ctx, func(tx ledger.Tx) error {
			for _, e := range appended {
				if err := tx.AppendEvent(e); err != nil {
					return err
				}
			}
			return nil
		}))
		assert.Less(t, appended[0].ID, appended[1].ID)
		assert.Less(t, appended[1].ID, appended[2].ID)

		events, total, err := s.Events(ctx, c.ID, 0, 10)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, ledger.EventContributionReceived, events[1].Type)
		assert.Equal(t, alice, events[1].Account)
		assert.Equal(t, "40", events[1].Amount.String())
		assert.Equal(t, uint64(110), events[1].Timestamp)

		t.Run("分页获取事件", func(t *testing.T) {
			page, total, err := s.Events(ctx, c.ID, 1, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			require.Len(t, page, 1)
			assert.Equal(t, appended[1].ID, page[0].ID)

			page, total, err = s.Events(ctx, c.ID, 2, 5)
			require.NoError(t, err)
			assert.Equal(t, int64(3), total)
			require.Len(t, page, 1)
			assert.Equal(t, ledger.EventRefundIssued, page[0].Type)
		})

		t.Run("偏移超出事件总数", func(t *testing.T) {
			page, total, err := s.Events(ctx, c.ID, math.MaxInt, 10)
			require.NoError(t, err)
			assert.Empty(t, page)
			assert.Equal(t, int64(3), total)
		})

		t.Run("分批获取未处理事件", func(t *testing.T) {
			pending, err := s.PendingEvents(ctx, 2)
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, appended[0].ID, pending[0].ID)
		})

		t.Run("应用事件累加统计", func(t *testing.T) {
			require.NoError(t, s.ApplyEvent(ctx, events[1], event.StatsDelta{
				Contributions: 1,
				Pledged:       big.NewInt(40),
			}))

			stats, err := s.Stats(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.Contributions)
			assert.Equal(t, "40", stats.Pledged.String())
			assert.Equal(t, events[1].ID, stats.LastEventID)

			pending, err := s.PendingEvents(ctx, 10)
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, events[0].ID, pending[0].ID)
			assert.Equal(t, events[2].ID, pending[1].ID)
		})

		t.Run("重复应用同一事件被忽略", func(t *testing.T) {
			require.NoError(t, s.ApplyEvent(ctx, events[1], event.StatsDelta{
				Contributions: 1,
				Pledged:       big.NewInt(40),
			}))

			stats, err := s.Stats(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), stats.Contributions)
			assert.Equal(t, "40", stats.Pledged.String())
		})

		t.Run("无统计时返回空统计", func(t *testing.T) {
			stats, err := s.Stats(ctx, 77)
			require.NoError(t, err)
			assert.Equal(t, uint64(77), stats.CampaignID)
			assert.Equal(t, 0, stats.Pledged.Sign())
		})
	})
}

// TestLedgerOnGorm 账本在 gorm 存储上的完整流程
func TestLedgerOnGorm(t *testing.T) {
	ctx := context.Background()
	s := newGormStore(t)
	clock := &fixedClock{now: 100}
	bank := &testBank{}
	l := ledger.New(s, clock, bank, common.HexToAddress("0x01"))

	require.NoError(t, s.Atomic(ctx, func(tx ledger.Tx) error {
		return tx.SetBalance(alice, big.NewInt(500))
	}))

	c, err := l.CreateCampaign(ctx, owner, ledger.CampaignParams{
		Title:    "gorm",
		Target:   big.NewInt(300),
		Deadline: 200,
	})
	require.NoError(t, err)

	require.NoError(t, l.Pledge(ctx, c.ID, alice, big.NewInt(120)))

	bank.fail = true
	err = l.Pledge(ctx, c.ID, alice, big.NewInt(30))
	assert.ErrorIs(t, err, ledger.ErrTransferFailed)
	bank.fail = false

	amount, err := l.Contribution(ctx, c.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "120", amount.String())

	clock.now = 200
	status, err := l.Status(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusFailed, status)

	refunded, err := l.Refund(ctx, c.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "120", refunded.String())

	require.NoError(t, s.View(ctx, func(tx ledger.Tx) error {
		balance, err := tx.Balance(alice)
		require.NoError(t, err)
		assert.Equal(t, "500", balance.String())
		return nil
	}))

	events, total, err := s.Events(ctx, c.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, ledger.EventRefundIssued, events[2].Type)
}

func TestUsedSignatures(t *testing.T) {
	forEachStore(t, func(t *testing.T, s testStore) {
		ctx := context.Background()
		first := common.HexToHash("0x01")
		second := common.HexToHash("0x02")

		fresh, err := s.UseSignature(ctx, first, alice, 100)
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = s.UseSignature(ctx, first, alice, 100)
		require.NoError(t, err)
		assert.False(t, fresh)

		fresh, err = s.UseSignature(ctx, second, bob, 200)
		require.NoError(t, err)
		assert.True(t, fresh)

		t.Run("清理过期签名", func(t *testing.T) {
			n, err := s.PruneSignatures(ctx, 150)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			fresh, err := s.UseSignature(ctx, second, bob, 200)
			require.NoError(t, err)
			assert.False(t, fresh)

			fresh, err = s.UseSignature(ctx, first, alice, 300)
			require.NoError(t, err)
			assert.True(t, fresh)
		})
	})
}

type fixedClock struct {
	now uint64
}

func (c *fixedClock) Now(context.Context) (uint64, error) {
	return c.now, nil
}

// testBank 直接改账户表的转账原语
type testBank struct {
	fail bool
}

func (b *testBank) Transfer(_ context.Context, book ledger.AccountBook, from, to common.Address, amount *big.Int) error {
	if b.fail {
		return errors.New("transfer disabled")
	}
	fromBalance, err := book.Balance(from)
	if err != nil {
		return err
	}
	toBalance, err := book.Balance(to)
	if err != nil {
		return err
	}
	if err := book.SetBalance(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return book.SetBalance(to, new(big.Int).Add(toBalance, amount))
}
