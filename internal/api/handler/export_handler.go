package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/service"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportProgress 导出学期进度表
// GET /api/v1/export/progress?period_id=xxx
func (h *ExportHandler) ExportProgress(c *gin.Context) {
	periodID := c.Query("period_id")
	if periodID == "" {
		response.BadRequest(c, 10001, "period_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportPeriodProgress(c.Request.Context(), periodID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportMeetings 导师导出自己的会议日历
// GET /api/v1/export/meetings
func (h *ExportHandler) ExportMeetings(c *gin.Context) {
	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportAdvisorMeetingsICS(c.Request.Context(), advisorID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 13001, "学期不存在")
	case errors.Is(err, service.ErrAdvisorNotFound):
		response.NotFound(c, 14002, "导师不存在")
	case errors.Is(err, service.ErrExportNoProjects):
		response.NotFound(c, 18001, "该学期暂无项目")
	case errors.Is(err, service.ErrExportNoMeetings):
		response.NotFound(c, 18002, "该导师暂无会议")
	default:
		response.InternalError(c)
	}
}
