package handler

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/blues/crowdfund/internal/auth"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 众筹处理器
type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
	eventLogic    *logic.EventLogic
}

// NewCampaignHandler 创建众筹处理器
func NewCampaignHandler(campaignLogic *logic.CampaignLogic, eventLogic *logic.EventLogic) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: campaignLogic,
		eventLogic:    eventLogic,
	}
}

// CreateCampaign 创建众筹，调用者为所有者
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, codeInvalidParams, "请求参数错误: "+err.Error())
		return
	}
	target, ok := parseAmount(c, req.Target)
	if !ok {
		return
	}

	created, err := h.campaignLogic.CreateCampaign(c.Request.Context(), caller, ledger.CampaignParams{
		Title:       req.Title,
		Description: req.Description,
		Target:      target,
		Deadline:    req.Deadline,
	})
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "创建众筹成功", ToCampaignResponse(&logic.CampaignView{
		Campaign: created,
		Status:   ledger.StatusFunding,
	}))
}

// GetCampaign 获取众筹详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}

	view, err := h.campaignLogic.GetCampaign(c.Request.Context(), id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取众筹详情成功", ToCampaignResponse(view))
}

// GetStatus 获取众筹状态
func (h *CampaignHandler) GetStatus(c *gin.Context) {
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}

	status, err := h.campaignLogic.GetStatus(c.Request.Context(), id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取众筹状态成功", StatusResponse{CampaignID: id, Status: string(status)})
}

// Claim 所有者提取资金
func (h *CampaignHandler) Claim(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}

	paid, err := h.campaignLogic.Claim(c.Request.Context(), id, caller)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "提取资金成功", TransferResponse{
		CampaignID: id,
		Account:    caller.Hex(),
		Amount:     paid.String(),
	})
}

func requireCaller(c *gin.Context) (common.Address, bool) {
	caller, ok := auth.Caller(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, codeUnauthorized, "未认证的调用者")
		return common.Address{}, false
	}
	return caller, true
}

func parseCampaignID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, codeInvalidParams, "无效的众筹ID")
		return 0, false
	}
	return id, true
}

func parseAddress(c *gin.Context, s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		ErrorResponse(c, http.StatusBadRequest, codeInvalidParams, "无效的地址")
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

func parseAmount(c *gin.Context, s string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, codeInvalidParams, "无效的金额")
		return nil, false
	}
	return amount, true
}
