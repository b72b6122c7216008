package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pledge 出资
func (h *CampaignHandler) Pledge(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, codeInvalidParams, "请求参数错误: "+err.Error())
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	if err := h.campaignLogic.Pledge(c.Request.Context(), id, caller, amount); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	balance, err := h.campaignLogic.GetContribution(c.Request.Context(), id, caller)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "出资成功", ContributionResponse{
		Pledger: caller.Hex(),
		Amount:  balance.String(),
	})
}

// GetContributions 获取众筹出资列表
func (h *CampaignHandler) GetContributions(c *gin.Context) {
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}

	list, err := h.campaignLogic.GetContributions(c.Request.Context(), id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	contributions, total := ToContributionResponseList(list)
	SuccessResponse(c, http.StatusOK, "获取出资列表成功", GetContributionsResponse{
		Contributions: contributions,
		TotalRaised:   total.String(),
	})
}

// GetContribution 获取单个出资人的出资
func (h *CampaignHandler) GetContribution(c *gin.Context) {
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}
	pledger, ok := parseAddress(c, c.Param("address"))
	if !ok {
		return
	}

	amount, err := h.campaignLogic.GetContribution(c.Request.Context(), id, pledger)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取出资成功", ContributionResponse{
		Pledger: pledger.Hex(),
		Amount:  amount.String(),
	})
}
