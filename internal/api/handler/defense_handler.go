package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/service"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/response"
)

// DefenseHandler 答辩流程模块 HTTP 处理器
type DefenseHandler struct {
	defenseSvc service.DefenseService
}

// NewDefenseHandler 创建 DefenseHandler
func NewDefenseHandler(defenseSvc service.DefenseService) *DefenseHandler {
	return &DefenseHandler{defenseSvc: defenseSvc}
}

// RequestDefense 学生发起答辩申请
// POST /api/v1/projects/:id/defense
func (h *DefenseHandler) RequestDefense(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.RequestDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	project, err := h.defenseSvc.RequestDefense(c.Request.Context(), studentID, projectID, &req)
	if err != nil {
		h.handleDefenseError(c, err)
		return
	}

	response.OK(c, project)
}

// RespondDefense 管理员答复答辩申请
// PUT /api/v1/projects/:id/defense
func (h *DefenseHandler) RespondDefense(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.RespondDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	project, err := h.defenseSvc.Respond(c.Request.Context(), projectID, &req)
	if err != nil {
		h.handleDefenseError(c, err)
		return
	}

	response.OK(c, project)
}

// handleDefenseError 统一处理答辩流程模块业务错误
func (h *DefenseHandler) handleDefenseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 15001, "项目不存在")
	case errors.Is(err, service.ErrNotProjectStudent):
		response.Forbidden(c, 15003, "学生不属于该项目")
	case errors.Is(err, service.ErrInvalidStage):
		response.UnprocessableEntity(c, 17001, "项目当前阶段不允许该操作")
	case errors.Is(err, service.ErrTribunalSize):
		response.BadRequest(c, 17002, "答辩委员会须为 3 到 5 人")
	default:
		response.InternalError(c)
	}
}
