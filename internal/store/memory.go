package store

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"sync"

	"github.com/blues/crowdfund/internal/event"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

var errReadOnly = errors.New("write in read-only view")

// MemoryStore 内存存储，写事务在副本上执行，成功后整体替换
type MemoryStore struct {
	mu         sync.RWMutex
	state      *memState
	signatures map[common.Hash]int64 // 签名摘要 -> 过期时间
}

type memEvent struct {
	ledger.Event
	processed bool
}

type memState struct {
	lastCampaign  uint64
	campaigns     map[uint64]*ledger.Campaign
	contributions map[uint64][]ledger.Contribution // 按首次出资顺序
	balances      map[common.Address]*big.Int
	events        []memEvent
	stats         map[uint64]*event.Stats
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: &memState{
			campaigns:     make(map[uint64]*ledger.Campaign),
			contributions: make(map[uint64][]ledger.Contribution),
			balances:      make(map[common.Address]*big.Int),
			stats:         make(map[uint64]*event.Stats),
		},
	}
}

// Atomic 实现 ledger.Store
func (s *MemoryStore) Atomic(_ context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	if err := fn(&memTx{state: draft}); err != nil {
		return err
	}
	s.state = draft
	return nil
}

// View 实现 ledger.Store
func (s *MemoryStore) View(_ context.Context, fn func(tx ledger.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{state: s.state, readOnly: true})
}

// PendingEvents 实现 event.Log
func (s *MemoryStore) PendingEvents(_ context.Context, limit int) ([]ledger.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ledger.Event
	for _, e := range s.state.events {
		if len(result) >= limit {
			break
		}
		if !e.processed {
			result = append(result, copyEvent(e.Event))
		}
	}
	return result, nil
}

// ApplyEvent 实现 event.Log
func (s *MemoryStore) ApplyEvent(_ context.Context, e ledger.Event, delta event.StatsDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := sort.Search(len(s.state.events), func(i int) bool {
		return s.state.events[i].ID >= e.ID
	})
	if idx == len(s.state.events) || s.state.events[idx].ID != e.ID || s.state.events[idx].processed {
		return nil
	}

	stats, ok := s.state.stats[e.CampaignID]
	if !ok {
		stats = event.NewStats(e.CampaignID)
		s.state.stats[e.CampaignID] = stats
	}
	stats.Apply(e.ID, delta)
	s.state.events[idx].processed = true
	return nil
}

// Stats 实现 event.Log
func (s *MemoryStore) Stats(_ context.Context, campaignID uint64) (*event.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.state.stats[campaignID]
	if !ok {
		return event.NewStats(campaignID), nil
	}
	return copyStats(stats), nil
}

// Events 按 ID 升序分页列出众筹事件，同时返回事件总数
func (s *MemoryStore) Events(_ context.Context, campaignID uint64, offset, limit int) ([]ledger.Event, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []ledger.Event{}
	var total int64
	for _, e := range s.state.events {
		if e.CampaignID != campaignID {
			continue
		}
		if offset >= 0 && total >= int64(offset) && len(result) < limit {
			result = append(result, copyEvent(e.Event))
		}
		total++
	}
	return result, total, nil
}

func (st *memState) clone() *memState {
	cp := &memState{
		lastCampaign:  st.lastCampaign,
		campaigns:     make(map[uint64]*ledger.Campaign, len(st.campaigns)),
		contributions: make(map[uint64][]ledger.Contribution, len(st.contributions)),
		balances:      make(map[common.Address]*big.Int, len(st.balances)),
		events:        make([]memEvent, len(st.events)),
		stats:         make(map[uint64]*event.Stats, len(st.stats)),
	}
	for id, c := range st.campaigns {
		cp.campaigns[id] = c.Clone()
	}
	for id, list := range st.contributions {
		cp.contributions[id] = copyContributions(list)
	}
	for addr, v := range st.balances {
		cp.balances[addr] = cloneAmount(v)
	}
	copy(cp.events, st.events)
	for id, v := range st.stats {
		cp.stats[id] = copyStats(v)
	}
	return cp
}

// memTx 内存事务视图
type memTx struct {
	state    *memState
	readOnly bool
}

func (t *memTx) InsertCampaign(c *ledger.Campaign) error {
	if t.readOnly {
		return errReadOnly
	}
	t.state.lastCampaign++
	c.ID = t.state.lastCampaign
	t.state.campaigns[c.ID] = c.Clone()
	return nil
}

func (t *memTx) Campaign(id uint64) (*ledger.Campaign, error) {
	c, ok := t.state.campaigns[id]
	if !ok {
		return nil, ledger.ErrCampaignNotFound
	}
	return c.Clone(), nil
}

func (t *memTx) UpdateCampaign(c *ledger.Campaign) error {
	if t.readOnly {
		return errReadOnly
	}
	stored, ok := t.state.campaigns[c.ID]
	if !ok {
		return ledger.ErrCampaignNotFound
	}
	stored.Custody = c.Custody
	stored.TotalRaised = cloneAmount(c.TotalRaised)
	stored.Claimed = c.Claimed
	return nil
}

func (t *memTx) Contribution(id uint64, pledger common.Address) (*big.Int, error) {
	for _, c := range t.state.contributions[id] {
		if c.Pledger == pledger {
			return cloneAmount(c.Amount), nil
		}
	}
	return new(big.Int), nil
}

func (t *memTx) SetContribution(id uint64, pledger common.Address, amount *big.Int) error {
	if t.readOnly {
		return errReadOnly
	}
	list := t.state.contributions[id]
	for i := range list {
		if list[i].Pledger == pledger {
			list[i].Amount = cloneAmount(amount)
			return nil
		}
	}
	t.state.contributions[id] = append(list, ledger.Contribution{
		CampaignID: id,
		Pledger:    pledger,
		Amount:     cloneAmount(amount),
	})
	return nil
}

func (t *memTx) Contributions(id uint64) ([]ledger.Contribution, error) {
	return copyContributions(t.state.contributions[id]), nil
}

func (t *memTx) Balance(addr common.Address) (*big.Int, error) {
	return cloneAmount(t.state.balances[addr]), nil
}

func (t *memTx) SetBalance(addr common.Address, amount *big.Int) error {
	if t.readOnly {
		return errReadOnly
	}
	t.state.balances[addr] = cloneAmount(amount)
	return nil
}

func (t *memTx) AppendEvent(e *ledger.Event) error {
	if t.readOnly {
		return errReadOnly
	}
	e.ID = uint64(len(t.state.events)) + 1
	t.state.events = append(t.state.events, memEvent{Event: copyEvent(*e)})
	return nil
}

func copyContributions(list []ledger.Contribution) []ledger.Contribution {
	result := make([]ledger.Contribution, len(list))
	for i, c := range list {
		result[i] = ledger.Contribution{
			CampaignID: c.CampaignID,
			Pledger:    c.Pledger,
			Amount:     cloneAmount(c.Amount),
		}
	}
	return result
}

func copyEvent(e ledger.Event) ledger.Event {
	e.Amount = cloneAmount(e.Amount)
	return e
}

func copyStats(s *event.Stats) *event.Stats {
	cp := *s
	cp.Pledged = cloneAmount(s.Pledged)
	cp.Refunded = cloneAmount(s.Refunded)
	cp.Withdrawn = cloneAmount(s.Withdrawn)
	return &cp
}
