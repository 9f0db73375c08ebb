package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
)

// ── 测试辅助 ──

func setupTestReviewService() (ReviewService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewReviewService(repo, zap.NewNop())
	return svc, mocks
}

// seedReview 预置项目、导师、学生和一份 perfil 文档
func seedReview(mocks *testRepos) (advisorID, studentID, projectID, documentID string) {
	advisor := "adv-1"
	mocks.project.projects["proj-1"] = &model.Project{
		ProjectID: "proj-1",
		Title:     "测试项目",
		Stage:     model.StageProfile,
		AdvisorID: &advisor,
		Students:  []model.Student{{StudentID: "stu-1"}},
	}
	mocks.document.docs["doc-1"] = &model.Document{
		DocumentID: "doc-1",
		ProjectID:  "proj-1",
		Stage:      model.StageProfile,
		DocVersion: 2,
	}
	return advisor, "stu-1", "proj-1", "doc-1"
}

// seedObservation 在预置数据之上插入一条指定状态的文档级意见
func seedObservation(mocks *testRepos, advisorID, projectID, documentID, status string) string {
	mocks.observation.observations["obs-1"] = &model.Observation{
		ObservationID:   "obs-1",
		Scope:           model.ScopeDocument,
		ProjectID:       projectID,
		DocumentID:      &documentID,
		AdvisorID:       advisorID,
		Title:           "引言部分需要补充",
		Status:          status,
		RaisedInVersion: 2,
	}
	return "obs-1"
}

// ── CreateObservation 测试 ──

func TestReviewService_CreateObservation_DocumentScope(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)

	req := &dto.CreateObservationRequest{
		Scope:      model.ScopeDocument,
		DocumentID: documentID,
		Title:      "第三章缺少实验对比",
		Page:       12,
		BoxX:       100.5,
		BoxY:       200.25,
		BoxWidth:   300,
		BoxHeight:  50,
	}

	result, err := svc.CreateObservation(context.Background(), advisorID, projectID, req)
	if err != nil {
		t.Fatalf("CreateObservation 应成功: %v", err)
	}
	if result.Status != model.ObservationPending {
		t.Errorf("新意见状态应为 pending，实际=%s", result.Status)
	}
	if result.DocumentID != documentID {
		t.Errorf("期望 DocumentID=%s，实际=%s", documentID, result.DocumentID)
	}
	if result.RaisedInVersion != 2 {
		t.Errorf("期望 RaisedInVersion=2（文档当前版本），实际=%d", result.RaisedInVersion)
	}
	if result.Page != 12 || result.BoxX != 100.5 {
		t.Error("空间锚点应原样写入")
	}
}

func TestReviewService_CreateObservation_ProjectScope(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, _ := seedReview(mocks)

	req := &dto.CreateObservationRequest{
		Scope: model.ScopeProject,
		Title: "整体进度偏慢",
	}

	result, err := svc.CreateObservation(context.Background(), advisorID, projectID, req)
	if err != nil {
		t.Fatalf("CreateObservation 应成功: %v", err)
	}
	if result.DocumentID != "" {
		t.Error("项目级意见不应带文档锚点")
	}
}

func TestReviewService_CreateObservation_NotAdvisor(t *testing.T) {
	svc, mocks := setupTestReviewService()
	_, _, projectID, documentID := seedReview(mocks)

	req := &dto.CreateObservationRequest{
		Scope:      model.ScopeDocument,
		DocumentID: documentID,
		Title:      "测试意见",
	}
	_, err := svc.CreateObservation(context.Background(), "adv-other", projectID, req)
	if !errors.Is(err, ErrNotProjectAdvisor) {
		t.Errorf("期望 ErrNotProjectAdvisor，实际: %v", err)
	}
}

func TestReviewService_CreateObservation_DocumentMismatch(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, _ := seedReview(mocks)
	mocks.document.docs["doc-x"] = &model.Document{
		DocumentID: "doc-x",
		ProjectID:  "proj-other",
		Stage:      model.StageProfile,
		DocVersion: 1,
	}

	req := &dto.CreateObservationRequest{
		Scope:      model.ScopeDocument,
		DocumentID: "doc-x",
		Title:      "测试意见",
	}
	_, err := svc.CreateObservation(context.Background(), advisorID, projectID, req)
	if !errors.Is(err, ErrDocumentMismatch) {
		t.Errorf("期望 ErrDocumentMismatch，实际: %v", err)
	}
}

// ── StartReview 测试 ──

func TestReviewService_StartReview_Success(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationPending)

	result, err := svc.StartReview(context.Background(), advisorID, obsID)
	if err != nil {
		t.Fatalf("StartReview 应成功: %v", err)
	}
	if result.Status != model.ObservationInReview {
		t.Errorf("期望状态为 in_review，实际=%s", result.Status)
	}
}

func TestReviewService_StartReview_NotAuthor(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationPending)

	_, err := svc.StartReview(context.Background(), "adv-other", obsID)
	if !errors.Is(err, ErrNotObservationAuthor) {
		t.Errorf("期望 ErrNotObservationAuthor，实际: %v", err)
	}
}

func TestReviewService_StartReview_ApprovedIsTerminal(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationApproved)

	_, err := svc.StartReview(context.Background(), advisorID, obsID)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("approved 为终态，期望 InvalidTransitionError，实际: %v", err)
	}
	if invalid.From != model.ObservationApproved {
		t.Errorf("期望 From=approved，实际=%s", invalid.From)
	}
}

// ── CreateCorrection 测试 ──

func TestReviewService_CreateCorrection_Success(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, studentID, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationPending)

	// 学生在新版本文档上提交更正
	mocks.document.docs["doc-2"] = &model.Document{
		DocumentID: "doc-2",
		ProjectID:  projectID,
		Stage:      model.StageProfile,
		DocVersion: 3,
	}

	req := &dto.CreateCorrectionRequest{DocumentID: "doc-2", Body: "已补充实验对比"}
	result, err := svc.CreateCorrection(context.Background(), studentID, obsID, req)
	if err != nil {
		t.Fatalf("CreateCorrection 应成功: %v", err)
	}
	if result.ObservationID != obsID {
		t.Errorf("期望 ObservationID=%s，实际=%s", obsID, result.ObservationID)
	}

	obs := mocks.observation.observations[obsID]
	if obs.Status != model.ObservationCorrected {
		t.Errorf("提交更正后意见状态应为 corrected，实际=%s", obs.Status)
	}
	if obs.CorrectedInVersion == nil || *obs.CorrectedInVersion != 3 {
		t.Error("CorrectedInVersion 应记录更正所在的文档版本")
	}
}

func TestReviewService_CreateCorrection_Duplicate(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, studentID, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationCorrected)
	mocks.correction.corrections["corr-1"] = &model.Correction{
		CorrectionID:  "corr-1",
		ObservationID: obsID,
		StudentID:     studentID,
		DocumentID:    documentID,
	}

	req := &dto.CreateCorrectionRequest{DocumentID: documentID}
	_, err := svc.CreateCorrection(context.Background(), studentID, obsID, req)
	if !errors.Is(err, ErrCorrectionExists) {
		t.Errorf("一条意见至多一条更正，期望 ErrCorrectionExists，实际: %v", err)
	}
}

func TestReviewService_CreateCorrection_NotProjectStudent(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationPending)

	req := &dto.CreateCorrectionRequest{DocumentID: documentID}
	_, err := svc.CreateCorrection(context.Background(), "stu-other", obsID, req)
	if !errors.Is(err, ErrNotProjectStudent) {
		t.Errorf("期望 ErrNotProjectStudent，实际: %v", err)
	}
}

func TestReviewService_CreateCorrection_ApprovedIsTerminal(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, studentID, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationApproved)

	req := &dto.CreateCorrectionRequest{DocumentID: documentID}
	_, err := svc.CreateCorrection(context.Background(), studentID, obsID, req)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Errorf("approved 意见不可再更正，期望 InvalidTransitionError，实际: %v", err)
	}
}

// ── VerifyCorrection 测试 ──

func TestReviewService_VerifyCorrection_Approve(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationInReview)

	req := &dto.VerifyCorrectionRequest{Result: "accepted", Comments: "问题已解决"}
	result, err := svc.VerifyCorrection(context.Background(), advisorID, obsID, req)
	if err != nil {
		t.Fatalf("VerifyCorrection 应成功: %v", err)
	}
	if result.Status != model.ObservationApproved {
		t.Errorf("期望状态为 approved，实际=%s", result.Status)
	}
	if mocks.observation.observations[obsID].VerifyComments != "问题已解决" {
		t.Error("核验评语应被写入")
	}
}

func TestReviewService_VerifyCorrection_Reject(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationInReview)

	req := &dto.VerifyCorrectionRequest{Result: "rejected", Comments: "仍未对齐"}
	result, err := svc.VerifyCorrection(context.Background(), advisorID, obsID, req)
	if err != nil {
		t.Fatalf("VerifyCorrection 应成功: %v", err)
	}
	if result.Status != model.ObservationRejected {
		t.Errorf("期望状态为 rejected，实际=%s", result.Status)
	}
}

func TestReviewService_VerifyCorrection_FromCorrected(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	// corrected 状态要先 StartReview 才能核验
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationCorrected)

	req := &dto.VerifyCorrectionRequest{Result: "accepted"}
	_, err := svc.VerifyCorrection(context.Background(), advisorID, obsID, req)

	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("corrected 不能直接核验，期望 InvalidTransitionError，实际: %v", err)
	}
	if invalid.From != model.ObservationCorrected {
		t.Errorf("期望 From=corrected，实际=%s", invalid.From)
	}
}

// 被驳回的更正可撤回重提：rejected → (in_review) → corrected
func TestReviewService_RejectedObservation_CanBeCorrectedAgain(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, studentID, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationRejected)

	req := &dto.CreateCorrectionRequest{DocumentID: documentID, Body: "按意见重做"}
	if _, err := svc.CreateCorrection(context.Background(), studentID, obsID, req); err != nil {
		t.Fatalf("rejected 意见应可再次更正: %v", err)
	}
	if mocks.observation.observations[obsID].Status != model.ObservationCorrected {
		t.Errorf("期望状态回到 corrected，实际=%s", mocks.observation.observations[obsID].Status)
	}
}

// ── DeleteCorrection 测试 ──

func TestReviewService_DeleteCorrection_RevertsToPending(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, studentID, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationCorrected)
	v := 3
	mocks.observation.observations[obsID].CorrectedInVersion = &v
	mocks.correction.corrections["corr-1"] = &model.Correction{
		CorrectionID:  "corr-1",
		ObservationID: obsID,
		StudentID:     studentID,
		DocumentID:    documentID,
	}

	if err := svc.DeleteCorrection(context.Background(), studentID, obsID); err != nil {
		t.Fatalf("DeleteCorrection 应成功: %v", err)
	}

	obs := mocks.observation.observations[obsID]
	if obs.Status != model.ObservationPending {
		t.Errorf("撤回更正后意见应回到 pending，实际=%s", obs.Status)
	}
	if obs.CorrectedInVersion != nil {
		t.Error("撤回更正后 CorrectedInVersion 应清空")
	}
	if _, ok := mocks.correction.corrections["corr-1"]; ok {
		t.Error("更正记录应被物理删除")
	}
}

func TestReviewService_DeleteCorrection_ApprovedBlocked(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, studentID, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationApproved)
	mocks.correction.corrections["corr-1"] = &model.Correction{
		CorrectionID:  "corr-1",
		ObservationID: obsID,
		StudentID:     studentID,
		DocumentID:    documentID,
	}

	err := svc.DeleteCorrection(context.Background(), studentID, obsID)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Errorf("已核验通过的更正不可撤回，期望 InvalidTransitionError，实际: %v", err)
	}
}

func TestReviewService_DeleteCorrection_WrongStudent(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, studentID, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationCorrected)
	mocks.correction.corrections["corr-1"] = &model.Correction{
		CorrectionID:  "corr-1",
		ObservationID: obsID,
		StudentID:     studentID,
		DocumentID:    documentID,
	}

	err := svc.DeleteCorrection(context.Background(), "stu-other", obsID)
	if !errors.Is(err, ErrNotProjectStudent) {
		t.Errorf("期望 ErrNotProjectStudent，实际: %v", err)
	}
}

// ── 归档测试 ──

func TestReviewService_Archive_And_Restore(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationApproved)

	if err := svc.Archive(context.Background(), advisorID, obsID); err != nil {
		t.Fatalf("Archive 应成功: %v", err)
	}
	if !mocks.observation.observations[obsID].Archived {
		t.Error("意见应被标记为已归档")
	}

	// 归档的意见不计入未解决统计
	list, err := svc.ListByProject(context.Background(), projectID, false)
	if err != nil {
		t.Fatalf("ListByProject 应成功: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("默认列表不应包含已归档意见，实际条数=%d", len(list))
	}

	if err := svc.Restore(context.Background(), advisorID, obsID); err != nil {
		t.Fatalf("Restore 应成功: %v", err)
	}
	if mocks.observation.observations[obsID].Archived {
		t.Error("恢复后意见不应再是归档状态")
	}
}

func TestReviewService_Archive_NotAuthor(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationApproved)

	err := svc.Archive(context.Background(), "adv-other", obsID)
	if !errors.Is(err, ErrNotObservationAuthor) {
		t.Errorf("期望 ErrNotObservationAuthor，实际: %v", err)
	}
}

// 归档的 pending 意见不阻塞阶段关闭
func TestReviewService_CountPending_SkipsArchived(t *testing.T) {
	svc, mocks := setupTestReviewService()
	advisorID, _, projectID, documentID := seedReview(mocks)
	obsID := seedObservation(mocks, advisorID, projectID, documentID, model.ObservationPending)
	mocks.observation.observations[obsID].Archived = true

	n, err := svc.CountPending(context.Background(), projectID, model.StageProfile)
	if err != nil {
		t.Fatalf("CountPending 应成功: %v", err)
	}
	if n != 0 {
		t.Errorf("归档意见不应计入未解决统计，实际=%d", n)
	}
}
