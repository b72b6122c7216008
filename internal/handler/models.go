package handler

import (
	"math/big"

	"github.com/blues/crowdfund/internal/event"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logic"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 请求模型，金额均为十进制字符串

// CreateCampaignRequest 创建众筹请求
type CreateCampaignRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Target      string `json:"target" binding:"required"`
	Deadline    uint64 `json:"deadline" binding:"required"`
}

// AmountRequest 出资/发放请求
type AmountRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// 众筹相关响应模型

// CampaignResponse 众筹响应模型
type CampaignResponse struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Target      string `json:"target"`
	Deadline    uint64 `json:"deadline"`
	Custody     string `json:"custody"`
	TotalRaised string `json:"totalRaised"`
	Claimed     bool   `json:"claimed"`
	Status      string `json:"status"`
	CreatedAt   uint64 `json:"createdAt"`
}

// StatusResponse 众筹状态响应
type StatusResponse struct {
	CampaignID uint64 `json:"campaignId"`
	Status     string `json:"status"`
}

// ContributionResponse 出资响应模型
type ContributionResponse struct {
	Pledger string `json:"pledger"`
	Amount  string `json:"amount"`
}

// GetContributionsResponse 获取出资列表响应
type GetContributionsResponse struct {
	Contributions []ContributionResponse `json:"contributions"`
	TotalRaised   string                 `json:"totalRaised"`
}

// TransferResponse claim/refund 的转账结果
type TransferResponse struct {
	CampaignID uint64 `json:"campaignId"`
	Account    string `json:"account"`
	Amount     string `json:"amount"`
}

// EventResponse 事件响应模型
type EventResponse struct {
	ID        uint64 `json:"id"`
	Type      string `json:"type"`
	Account   string `json:"account"`
	Amount    string `json:"amount"`
	Timestamp uint64 `json:"timestamp"`
}

// GetEventsResponse 获取事件列表响应
type GetEventsResponse struct {
	Events     []EventResponse `json:"events"`
	Pagination Pagination      `json:"pagination"`
}

// StatsResponse 众筹统计响应
type StatsResponse struct {
	CampaignID    uint64 `json:"campaignId"`
	Contributions int64  `json:"contributions"`
	Refunds       int64  `json:"refunds"`
	Pledged       string `json:"pledged"`
	Refunded      string `json:"refunded"`
	Withdrawn     string `json:"withdrawn"`
	LastEventID   uint64 `json:"lastEventId"`
}

// BalanceResponse 账户余额响应
type BalanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// 转换函数

// ToCampaignResponse 将众筹快照转换为响应模型
func ToCampaignResponse(view *logic.CampaignView) CampaignResponse {
	c := view.Campaign
	return CampaignResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Owner:       c.Owner.Hex(),
		Target:      c.Target.String(),
		Deadline:    c.Deadline,
		Custody:     c.Custody.Hex(),
		TotalRaised: c.TotalRaised.String(),
		Claimed:     c.Claimed,
		Status:      string(view.Status),
		CreatedAt:   c.CreatedAt,
	}
}

// ToContributionResponseList 转换出资列表并计算合计
func ToContributionResponseList(list []ledger.Contribution) ([]ContributionResponse, *big.Int) {
	total := new(big.Int)
	responses := make([]ContributionResponse, 0, len(list))
	for _, c := range list {
		total.Add(total, c.Amount)
		responses = append(responses, ContributionResponse{
			Pledger: c.Pledger.Hex(),
			Amount:  c.Amount.String(),
		})
	}
	return responses, total
}

// ToEventResponseList 转换事件列表
func ToEventResponseList(events []ledger.Event) []EventResponse {
	responses := make([]EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, EventResponse{
			ID:        e.ID,
			Type:      string(e.Type),
			Account:   e.Account.Hex(),
			Amount:    e.Amount.String(),
			Timestamp: e.Timestamp,
		})
	}
	return responses
}

// ToStatsResponse 转换统计
func ToStatsResponse(s *event.Stats) StatsResponse {
	return StatsResponse{
		CampaignID:    s.CampaignID,
		Contributions: s.Contributions,
		Refunds:       s.Refunds,
		Pledged:       s.Pledged.String(),
		Refunded:      s.Refunded.String(),
		Withdrawn:     s.Withdrawn.String(),
		LastEventID:   s.LastEventID,
	}
}
