package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/service"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/pkg/response"
)

// ProjectHandler 项目与阶段推进模块 HTTP 处理器
type ProjectHandler struct {
	projectSvc service.ProjectService
	stageSvc   service.StageService
}

// NewProjectHandler 创建 ProjectHandler
func NewProjectHandler(projectSvc service.ProjectService, stageSvc service.StageService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc, stageSvc: stageSvc}
}

// ── 项目 ──

// CreateProject 学生创建项目（附带首个选题提案）
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	project, err := h.projectSvc.Create(c.Request.Context(), studentID, &req)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.Created(c, project)
}

// GetMyProject 学生获取自己的项目
// GET /api/v1/projects/mine
func (h *ProjectHandler) GetMyProject(c *gin.Context) {
	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	project, err := h.projectSvc.GetMine(c.Request.Context(), studentID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, project)
}

// ListAdvisedProjects 导师获取自己指导的项目
// GET /api/v1/projects/advised
func (h *ProjectHandler) ListAdvisedProjects(c *gin.Context) {
	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	projects, err := h.projectSvc.ListByAdvisor(c.Request.Context(), advisorID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, gin.H{"list": projects})
}

// GetProject 获取项目详情
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	project, err := h.projectSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, project)
}

// ── 文档 ──

// RegisterDocument 登记新文档版本
// POST /api/v1/projects/:id/documents
func (h *ProjectHandler) RegisterDocument(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.RegisterDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	doc, err := h.projectSvc.RegisterDocument(c.Request.Context(), studentID, projectID, &req)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.Created(c, doc)
}

// ListDocuments 获取项目文档版本列表
// GET /api/v1/projects/:id/documents
func (h *ProjectHandler) ListDocuments(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	docs, err := h.projectSvc.ListDocuments(c.Request.Context(), projectID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, gin.H{"list": docs})
}

// ── 选题提案 ──

// SubmitProposal 学生提交选题提案
// POST /api/v1/projects/:id/proposals
func (h *ProjectHandler) SubmitProposal(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	studentID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	proposal, err := h.projectSvc.SubmitProposal(c.Request.Context(), studentID, projectID, &req)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.Created(c, proposal)
}

// ListProposals 获取项目提案列表
// GET /api/v1/projects/:id/proposals
func (h *ProjectHandler) ListProposals(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	proposals, err := h.projectSvc.ListProposals(c.Request.Context(), projectID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, gin.H{"list": proposals})
}

// ManageTopic 导师处理选题提案
// PUT /api/v1/projects/:id/topic
func (h *ProjectHandler) ManageTopic(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.ManageTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	proposal, err := h.stageSvc.ManageProposedTopic(c.Request.Context(), advisorID, projectID, &req)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, proposal)
}

// ── 阶段推进 ──

// ApproveStage 导师批准项目当前阶段
// PUT /api/v1/projects/:id/stage
func (h *ProjectHandler) ApproveStage(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	var req dto.ApproveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	project, err := h.stageSvc.ApproveStage(c.Request.Context(), advisorID, projectID, &req)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, project)
}

// ── 指导会议 ──

// CreateMeeting 导师排定会议
// POST /api/v1/meetings
func (h *ProjectHandler) CreateMeeting(c *gin.Context) {
	var req dto.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	meeting, err := h.projectSvc.CreateMeeting(c.Request.Context(), advisorID, &req)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.Created(c, meeting)
}

// UpdateMeeting 更新会议状态
// PUT /api/v1/meetings/:id
func (h *ProjectHandler) UpdateMeeting(c *gin.Context) {
	meetingID := c.Param("id")
	if meetingID == "" {
		response.BadRequest(c, 10001, "会议ID不能为空")
		return
	}

	var req dto.UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	advisorID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	meeting, err := h.projectSvc.UpdateMeeting(c.Request.Context(), advisorID, meetingID, &req)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, meeting)
}

// ListMeetings 获取项目会议列表
// GET /api/v1/projects/:id/meetings
func (h *ProjectHandler) ListMeetings(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		response.BadRequest(c, 10001, "项目ID不能为空")
		return
	}

	meetings, err := h.projectSvc.ListMeetings(c.Request.Context(), projectID)
	if err != nil {
		h.handleProjectError(c, err)
		return
	}

	response.OK(c, gin.H{"list": meetings})
}

// handleProjectError 统一处理项目与阶段模块业务错误
func (h *ProjectHandler) handleProjectError(c *gin.Context, err error) {
	var blocked *service.StageBlockedError

	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		response.NotFound(c, 15001, "项目不存在")
	case errors.Is(err, service.ErrStudentHasProject):
		response.Conflict(c, 15002, "学生已有未完结的项目")
	case errors.Is(err, service.ErrNotProjectStudent):
		response.Forbidden(c, 15003, "学生不属于该项目")
	case errors.Is(err, service.ErrNotProjectAdvisor):
		response.Forbidden(c, 15004, "只有项目导师可以操作")
	case errors.Is(err, service.ErrStageOutOfOrder):
		response.UnprocessableEntity(c, 15005, "只能批准项目当前所处的阶段")
	case errors.Is(err, service.ErrStageAlreadyApproved):
		response.Conflict(c, 15006, "该阶段已批准")
	case errors.Is(err, service.ErrNoDocuments):
		response.UnprocessableEntity(c, 15007, "该阶段尚未登记任何文档")
	case errors.As(err, &blocked):
		response.ErrorWithDetails(c, 409, 15008, "阶段仍有未解决的观察意见", blocked.Error())
	case errors.Is(err, service.ErrProposalNotFound):
		response.NotFound(c, 15009, "选题提案不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 14003, "学生不存在")
	case errors.Is(err, service.ErrMeetingNotFound):
		response.NotFound(c, 15010, "会议不存在")
	case errors.Is(err, service.ErrPeriodDateInvalid):
		response.BadRequest(c, 13003, "日期格式不合法")
	default:
		response.InternalError(c)
	}
}
