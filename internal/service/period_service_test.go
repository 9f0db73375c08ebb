package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/dto"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
)

// ── 测试辅助 ──

func setupTestPeriodService() (PeriodService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewPeriodService(repo, zap.NewNop())
	return svc, mocks
}

// ── Create 测试 ──

func TestPeriodService_Create_Success(t *testing.T) {
	svc, _ := setupTestPeriodService()

	req := &dto.CreatePeriodRequest{
		Name:            "1-2026",
		SemesterStart:   "2026-02-02",
		SemesterEnd:     "2026-06-30",
		EnrollmentStart: "2026-02-02",
		EnrollmentEnd:   "2026-02-20",
	}

	result, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "1-2026" {
		t.Errorf("期望Name=1-2026，实际=%s", result.Name)
	}
	if result.IsActive {
		t.Error("新创建学期不应默认激活")
	}
}

func TestPeriodService_Create_SemesterEndBeforeStart(t *testing.T) {
	svc, _ := setupTestPeriodService()

	req := &dto.CreatePeriodRequest{
		Name:            "错误学期",
		SemesterStart:   "2026-06-30",
		SemesterEnd:     "2026-02-02",
		EnrollmentStart: "2026-02-02",
		EnrollmentEnd:   "2026-02-20",
	}

	_, err := svc.Create(context.Background(), req)
	if !errors.Is(err, ErrPeriodDateInvalid) {
		t.Errorf("期望 ErrPeriodDateInvalid，实际: %v", err)
	}
}

func TestPeriodService_Create_EnrollmentOutsideSemester(t *testing.T) {
	svc, _ := setupTestPeriodService()

	// 报名窗口跨出学期区间
	req := &dto.CreatePeriodRequest{
		Name:            "错误学期",
		SemesterStart:   "2026-02-02",
		SemesterEnd:     "2026-06-30",
		EnrollmentStart: "2026-01-15",
		EnrollmentEnd:   "2026-02-20",
	}

	_, err := svc.Create(context.Background(), req)
	if !errors.Is(err, ErrPeriodDateInvalid) {
		t.Errorf("期望 ErrPeriodDateInvalid，实际: %v", err)
	}
}

func TestPeriodService_Create_BadDateFormat(t *testing.T) {
	svc, _ := setupTestPeriodService()

	req := &dto.CreatePeriodRequest{
		Name:            "错误学期",
		SemesterStart:   "02/02/2026",
		SemesterEnd:     "2026-06-30",
		EnrollmentStart: "2026-02-02",
		EnrollmentEnd:   "2026-02-20",
	}

	_, err := svc.Create(context.Background(), req)
	if !errors.Is(err, ErrPeriodDateInvalid) {
		t.Errorf("期望 ErrPeriodDateInvalid，实际: %v", err)
	}
}

// ── GetActive 测试 ──

func TestPeriodService_GetActive_Success(t *testing.T) {
	svc, mocks := setupTestPeriodService()
	mocks.period.periods["period-1"] = &model.Period{
		PeriodID: "period-1",
		Name:     "1-2026",
		IsActive: true,
	}

	result, err := svc.GetActive(context.Background())
	if err != nil {
		t.Fatalf("GetActive 应成功: %v", err)
	}
	if result.ID != "period-1" {
		t.Errorf("期望ID=period-1，实际=%s", result.ID)
	}
}

func TestPeriodService_GetActive_NotFound(t *testing.T) {
	svc, _ := setupTestPeriodService()

	_, err := svc.GetActive(context.Background())
	if !errors.Is(err, ErrNoActivePeriod) {
		t.Errorf("期望 ErrNoActivePeriod，实际: %v", err)
	}
}

// ── Activate 测试 ──

func TestPeriodService_Activate_ClearsPrevious(t *testing.T) {
	svc, mocks := setupTestPeriodService()
	mocks.period.periods["period-1"] = &model.Period{
		PeriodID:      "period-1",
		Name:          "2-2025",
		SemesterStart: time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
		SemesterEnd:   time.Date(2025, 12, 19, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
	mocks.period.periods["period-2"] = &model.Period{
		PeriodID:      "period-2",
		Name:          "1-2026",
		SemesterStart: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		SemesterEnd:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		IsActive:      false,
	}

	result, err := svc.Activate(context.Background(), "period-2")
	if err != nil {
		t.Fatalf("Activate 应成功: %v", err)
	}
	if !result.IsActive {
		t.Error("目标学期应被激活")
	}

	// 同一时刻至多一个激活学期
	if mocks.period.periods["period-1"].IsActive {
		t.Error("旧激活学期应被取消激活")
	}
	if !mocks.period.periods["period-2"].IsActive {
		t.Error("period-2 应被激活")
	}
}

func TestPeriodService_Activate_NotFound(t *testing.T) {
	svc, _ := setupTestPeriodService()

	_, err := svc.Activate(context.Background(), "nonexistent")
	if !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("期望 ErrPeriodNotFound，实际: %v", err)
	}
}

// ── Update / Delete 测试 ──

func TestPeriodService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestPeriodService()

	name := "新名称"
	_, err := svc.Update(context.Background(), "nonexistent", &dto.UpdatePeriodRequest{Name: &name})
	if !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("期望 ErrPeriodNotFound，实际: %v", err)
	}
}

func TestPeriodService_Delete_Success(t *testing.T) {
	svc, mocks := setupTestPeriodService()
	mocks.period.periods["period-1"] = &model.Period{PeriodID: "period-1", Name: "1-2026"}

	if err := svc.Delete(context.Background(), "period-1", "admin-1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := mocks.period.periods["period-1"]; ok {
		t.Error("学期应被删除")
	}
}
