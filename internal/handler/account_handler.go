package handler

import (
	"net/http"

	"github.com/blues/crowdfund/internal/logic"
	"github.com/gin-gonic/gin"
)

// AccountHandler 宿主账户处理器
type AccountHandler struct {
	accountLogic *logic.AccountLogic
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(accountLogic *logic.AccountLogic) *AccountHandler {
	return &AccountHandler{accountLogic: accountLogic}
}

// GetBalance 获取账户余额
func (h *AccountHandler) GetBalance(c *gin.Context) {
	addr, ok := parseAddress(c, c.Param("address"))
	if !ok {
		return
	}

	balance, err := h.accountLogic.GetBalance(c.Request.Context(), addr)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取账户余额成功", BalanceResponse{
		Address: addr.Hex(),
		Balance: balance.String(),
	})
}

// Mint 水龙头发放
func (h *AccountHandler) Mint(c *gin.Context) {
	addr, ok := parseAddress(c, c.Param("address"))
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

	balance, err := h.accountLogic.Mint(c.Request.Context(), addr, amount)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "发放成功", BalanceResponse{
		Address: addr.Hex(),
		Balance: balance.String(),
	})
}
