package handler

import (
	"errors"
	"net/http"

	"github.com/blues/crowdfund/internal/host"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logger"
	"github.com/blues/crowdfund/internal/logic"
	"github.com/gin-gonic/gin"
)

const (
	codeInvalidParams = "INVALID_PARAMS"
	codeUnauthorized  = "UNAUTHORIZED"
	codeInternal      = "INTERNAL_ERROR"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应，code 供链下工具按原因分支
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Code:    code,
		Data:    nil,
	})
}

// LedgerErrorResponse 把账本错误映射为 HTTP 状态码和错误编码
func LedgerErrorResponse(c *gin.Context, err error) {
	code := ledger.ErrorCode(err)
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, logic.ErrInvalidParams), errors.Is(err, host.ErrInvalidAmount):
		status, code = http.StatusBadRequest, codeInvalidParams
	case errors.Is(err, ledger.ErrZeroAmount),
		errors.Is(err, ledger.ErrInvalidTarget),
		errors.Is(err, ledger.ErrInvalidDeadline),
		errors.Is(err, ledger.ErrInvalidOwner):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrCampaignNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrDeadlinePassed),
		errors.Is(err, ledger.ErrFundingStillOpen),
		errors.Is(err, ledger.ErrTargetNotReached),
		errors.Is(err, ledger.ErrAlreadyClaimed),
		errors.Is(err, ledger.ErrCampaignSucceeded),
		errors.Is(err, ledger.ErrNoContribution):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrTransferFailed):
		status = http.StatusPaymentRequired
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		code = codeInternal
	}
	ErrorResponse(c, status, code, err.Error())
}
