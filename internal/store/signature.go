package store

import (
	"context"
	"fmt"

	"github.com/blues/crowdfund/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm/clause"
)

// UseSignature 登记签名摘要，主键冲突说明签名已被使用
func (s *GormStore) UseSignature(ctx context.Context, key common.Hash, caller common.Address, expiresAt int64) (bool, error) {
	m := model.UsedSignatureModel{
		Hash:      key.Hex(),
		Caller:    caller.Hex(),
		ExpiresAt: expiresAt,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
	if res.Error != nil {
		return false, fmt.Errorf("failed to record signature of %s: %w", caller.Hex(), res.Error)
	}
	return res.RowsAffected == 1, nil
}

// PruneSignatures 删除 before 之前过期的签名记录
func (s *GormStore) PruneSignatures(ctx context.Context, before int64) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&model.UsedSignatureModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune signatures: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UseSignature 登记签名摘要
func (s *MemoryStore) UseSignature(_ context.Context, key common.Hash, _ common.Address, expiresAt int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.signatures[key]; ok {
		return false, nil
	}
	s.signatures[key] = expiresAt
	return true, nil
}

// PruneSignatures 删除 before 之前过期的签名记录
func (s *MemoryStore) PruneSignatures(_ context.Context, before int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key, expiresAt := range s.signatures {
		if expiresAt < before {
			delete(s.signatures, key)
			n++
		}
	}
	return n, nil
}
