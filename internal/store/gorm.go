package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/blues/crowdfund/internal/event"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 gorm 的持久化存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 gorm 存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomic 在数据库事务中执行 fn
func (s *GormStore) Atomic(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

// View 只读访问
func (s *GormStore) View(ctx context.Context, fn func(tx ledger.Tx) error) error {
	return fn(&gormTx{db: s.db.WithContext(ctx)})
}

// PendingEvents 实现 event.Log
func (s *GormStore) PendingEvents(ctx context.Context, limit int) ([]ledger.Event, error) {
	var list []model.EventModel
	if err := s.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}

	events := make([]ledger.Event, 0, len(list))
	for _, m := range list {
		e, err := toEvent(m)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// ApplyEvent 实现 event.Log
func (s *GormStore) ApplyEvent(ctx context.Context, e ledger.Event, delta event.StatsDelta) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.EventModel{}).
			Where("id = ? AND processed = ?", e.ID, false).
			Update("processed", true)
		if res.Error != nil {
			return fmt.Errorf("failed to mark event %d processed: %w", e.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		stats, err := loadStats(tx, e.CampaignID)
		if err != nil {
			return err
		}
		stats.Apply(e.ID, delta)

		m := model.CampaignStatsModel{
			CampaignId:    stats.CampaignID,
			Contributions: stats.Contributions,
			Refunds:       stats.Refunds,
			Pledged:       stats.Pledged.String(),
			Refunded:      stats.Refunded.String(),
			Withdrawn:     stats.Withdrawn.String(),
			LastEventId:   stats.LastEventID,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error; err != nil {
			return fmt.Errorf("failed to save stats of campaign %d: %w", e.CampaignID, err)
		}
		return nil
	})
}

// Stats 实现 event.Log
func (s *GormStore) Stats(ctx context.Context, campaignID uint64) (*event.Stats, error) {
	return loadStats(s.db.WithContext(ctx), campaignID)
}

// Events 按 ID 升序分页列出众筹事件，同时返回事件总数
func (s *GormStore) Events(ctx context.Context, campaignID uint64, offset, limit int) ([]ledger.Event, int64, error) {
	query := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&model.EventModel{}).Where("campaign_id = ?", campaignID)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events of campaign %d: %w", campaignID, err)
	}
	if offset < 0 || limit <= 0 || int64(offset) >= total {
		return []ledger.Event{}, total, nil
	}

	var list []model.EventModel
	if err := query().Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query events of campaign %d: %w", campaignID, err)
	}

	events := make([]ledger.Event, 0, len(list))
	for _, m := range list {
		e, err := toEvent(m)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, nil
}

func loadStats(db *gorm.DB, campaignID uint64) (*event.Stats, error) {
	var m model.CampaignStatsModel
	if err := db.Where("campaign_id = ?", campaignID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return event.NewStats(campaignID), nil
		}
		return nil, fmt.Errorf("failed to load stats of campaign %d: %w", campaignID, err)
	}

	stats := &event.Stats{
		CampaignID:    m.CampaignId,
		Contributions: m.Contributions,
		Refunds:       m.Refunds,
		LastEventID:   m.LastEventId,
	}
	var err error
	if stats.Pledged, err = parseAmount(m.Pledged); err != nil {
		return nil, err
	}
	if stats.Refunded, err = parseAmount(m.Refunded); err != nil {
		return nil, err
	}
	if stats.Withdrawn, err = parseAmount(m.Withdrawn); err != nil {
		return nil, err
	}
	return stats, nil
}

// gormTx 事务视图
type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) InsertCampaign(c *ledger.Campaign) error {
	m := model.CampaignModel{
		Title:       c.Title,
		Description: c.Description,
		Owner:       c.Owner.Hex(),
		Target:      c.Target.String(),
		Deadline:    c.Deadline,
		Custody:     c.Custody.Hex(),
		TotalRaised: c.TotalRaised.String(),
		Claimed:     c.Claimed,
		OpenedAt:    c.CreatedAt,
	}
	if err := t.db.Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	c.ID = m.Id
	return nil
}

func (t *gormTx) Campaign(id uint64) (*ledger.Campaign, error) {
	var m model.CampaignModel
	if err := t.db.Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to load campaign %d: %w", id, err)
	}
	return toCampaign(m)
}

func (t *gormTx) UpdateCampaign(c *ledger.Campaign) error {
	res := t.db.Model(&model.CampaignModel{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"custody":      c.Custody.Hex(),
			"total_raised": c.TotalRaised.String(),
			"claimed":      c.Claimed,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update campaign %d: %w", c.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ledger.ErrCampaignNotFound
	}
	return nil
}

func (t *gormTx) Contribution(id uint64, pledger common.Address) (*big.Int, error) {
	var m model.ContributionModel
	if err := t.db.Where("campaign_id = ? AND pledger = ?", id, pledger.Hex()).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("failed to load contribution: %w", err)
	}
	return parseAmount(m.Amount)
}

func (t *gormTx) SetContribution(id uint64, pledger common.Address, amount *big.Int) error {
	m := model.ContributionModel{
		CampaignId: id,
		Pledger:    pledger.Hex(),
		Amount:     amount.String(),
	}
	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "pledger"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to save contribution: %w", err)
	}
	return nil
}

func (t *gormTx) Contributions(id uint64) ([]ledger.Contribution, error) {
	var list []model.ContributionModel
	if err := t.db.Where("campaign_id = ?", id).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to query contributions of campaign %d: %w", id, err)
	}

	result := make([]ledger.Contribution, 0, len(list))
	for _, m := range list {
		amount, err := parseAmount(m.Amount)
		if err != nil {
			return nil, err
		}
		result = append(result, ledger.Contribution{
			CampaignID: m.CampaignId,
			Pledger:    common.HexToAddress(m.Pledger),
			Amount:     amount,
		})
	}
	return result, nil
}

func (t *gormTx) Balance(addr common.Address) (*big.Int, error) {
	var m model.AccountModel
	if err := t.db.Where("address = ?", addr.Hex()).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return parseAmount(m.Balance)
}

func (t *gormTx) SetBalance(addr common.Address, amount *big.Int) error {
	m := model.AccountModel{
		Address: addr.Hex(),
		Balance: amount.String(),
	}
	err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (t *gormTx) AppendEvent(e *ledger.Event) error {
	m := model.EventModel{
		CampaignId: e.CampaignID,
		EventType:  string(e.Type),
		Account:    e.Account.Hex(),
		Amount:     amountString(e.Amount),
		Timestamp:  e.Timestamp,
	}
	if err := t.db.Create(&m).Error; err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	e.ID = m.Id
	return nil
}

func toCampaign(m model.CampaignModel) (*ledger.Campaign, error) {
	target, err := parseAmount(m.Target)
	if err != nil {
		return nil, err
	}
	total, err := parseAmount(m.TotalRaised)
	if err != nil {
		return nil, err
	}
	return &ledger.Campaign{
		ID: m.Id,
		Config: ledger.Config{
			Owner:    common.HexToAddress(m.Owner),
			Target:   target,
			Deadline: m.Deadline,
		},
		Title:       m.Title,
		Description: m.Description,
		Custody:     common.HexToAddress(m.Custody),
		TotalRaised: total,
		Claimed:     m.Claimed,
		CreatedAt:   m.OpenedAt,
	}, nil
}

func toEvent(m model.EventModel) (ledger.Event, error) {
	amount, err := parseAmount(m.Amount)
	if err != nil {
		return ledger.Event{}, err
	}
	return ledger.Event{
		ID:         m.Id,
		CampaignID: m.CampaignId,
		Type:       ledger.EventType(m.EventType),
		Account:    common.HexToAddress(m.Account),
		Amount:     amount,
		Timestamp:  m.Timestamp,
	}, nil
}
