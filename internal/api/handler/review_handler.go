package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/service"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/response"
)

// ReviewHandler 评审循环模块 HTTP 处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler 创建 ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// CreateObservation 导师创建观察意见
// POST /api/v1/projects/:id/observations
func (h *ReviewHandler) CreateObservation(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.CreateObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	obs, err := h.reviewSvc.CreateObservation(c.Request.Context(), advisorID, projectID, &req)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.Created(c, obs)
}

// ListObservations 获取项目观察意见列表
// GET /api/v1/projects/:id/observations?include_archived=true
func (h *ReviewHandler) ListObservations(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	includeArchived := c.Query("include_archived") == "true"

	list, err := h.reviewSvc.ListByProject(c.Request.Context(), projectID, includeArchived)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListDocumentObservations 获取文档观察意见列表
// GET /api/v1/documents/:id/observations
func (h *ReviewHandler) ListDocumentObservations(c *gin.Context) {
	documentID := c.Param("id")
	if documentID == "" {
		response.BadRequest(c, 10001, "文档ID不能为空")
		return
	}

	list, err := h.reviewSvc.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetObservation 获取观察意见详情
// GET /api/v1/observations/:id
func (h *ReviewHandler) GetObservation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "观察意见ID不能为空")
		return
	}

	obs, err := h.reviewSvc.GetObservation(c.Request.Context(), id)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, obs)
}

// StartReview 导师开始审阅
// PUT /api/v1/observations/:id/review
func (h *ReviewHandler) StartReview(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "观察意见ID不能为空")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	obs, err := h.reviewSvc.StartReview(c.Request.Context(), advisorID, id)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, obs)
}

// CreateCorrection 学生提交更正
// POST /api/v1/observations/:id/correction
func (h *ReviewHandler) CreateCorrection(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "观察意见ID不能为空")
		return
	}

	var req dto.CreateCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	correction, err := h.reviewSvc.CreateCorrection(c.Request.Context(), studentID, id, &req)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.Created(c, correction)
}

// DeleteCorrection 学生撤回更正
// DELETE /api/v1/observations/:id/correction
func (h *ReviewHandler) DeleteCorrection(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "观察意见ID不能为空")
		return
	}

	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	if err := h.reviewSvc.DeleteCorrection(c.Request.Context(), studentID, id); err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, nil)
}

// VerifyCorrection 导师核验更正
// PUT /api/v1/observations/:id/verify
func (h *ReviewHandler) VerifyCorrection(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "观察意见ID不能为空")
		return
	}

	var req dto.VerifyCorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	obs, err := h.reviewSvc.VerifyCorrection(c.Request.Context(), advisorID, id, &req)
	if err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, obs)
}

// ArchiveObservation 归档观察意见
// PUT /api/v1/observations/:id/archive
func (h *ReviewHandler) ArchiveObservation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "观察意见ID不能为空")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	if err := h.reviewSvc.Archive(c.Request.Context(), advisorID, id); err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, nil)
}

// RestoreObservation 恢复归档的观察意见
// PUT /api/v1/observations/:id/restore
func (h *ReviewHandler) RestoreObservation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "观察意见ID不能为空")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	if err := h.reviewSvc.Restore(c.Request.Context(), advisorID, id); err != nil {
		h.handleReviewError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleReviewError 统一处理评审循环模块业务错误
func (h *ReviewHandler) handleReviewError(c *gin.Context, err error) {
	var invalid *service.InvalidTransitionError

	switch {
	case errors.Is(err, service.ErrObservationNotFound):
		response.NotFound(c, 16001, "观察意见不存在")
	case errors.Is(err, service.ErrDocumentNotFound):
		response.NotFound(c, 16002, "文档不存在")
	case errors.Is(err, service.ErrCorrectionNotFound):
		response.NotFound(c, 16003, "更正不存在")
	case errors.Is(err, service.ErrCorrectionExists):
		response.Conflict(c, 16004, "该观察意见已有更正")
	case errors.Is(err, service.ErrNotObservationAuthor):
		response.Forbidden(c, 16005, "只有提出该意见的导师可以操作")
	case errors.Is(err, service.ErrNotProjectStudent):
		response.Forbidden(c, 15003, "学生不属于该项目")
	case errors.Is(err, service.ErrNotProjectAdvisor):
		response.Forbidden(c, 15004, "只有项目导师可以操作")
	case errors.Is(err, service.ErrDocumentMismatch):
		response.BadRequest(c, 16006, "文档不属于该项目")
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 15001, "项目不存在")
	case errors.As(err, &invalid):
		response.UnprocessableEntity(c, 16007, invalid.Error())
	default:
		response.InternalError(c)
	}
}
