package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// GetEvents 分页获取众筹事件
func (h *CampaignHandler) GetEvents(c *gin.Context) {
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = 10
	}

	events, total, err := h.eventLogic.GetEvents(c.Request.Context(), id, page, pageSize)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	pagination := Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}

	SuccessResponse(c, http.StatusOK, "获取众筹事件成功", GetEventsResponse{
		Events:     ToEventResponseList(events),
		Pagination: pagination,
	})
}

// GetStats 获取众筹统计信息
func (h *CampaignHandler) GetStats(c *gin.Context) {
	id, ok := parseCampaignID(c)
	if !ok {
		return
	}

	stats, err := h.eventLogic.GetStats(c.Request.Context(), id)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取众筹统计信息成功", ToStatsResponse(stats))
}
