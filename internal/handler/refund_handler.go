package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Refund 众筹失败后出资人取回出资
func (h *CampaignHandler) Refund(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}

	refunded, err := h.campaignLogic.Refund(c.Request.Context(), id, caller)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "退款成功", TransferResponse{
		CampaignID: id,
		Account:    caller.Hex(),
		Amount:     refunded.String(),
	})
}
