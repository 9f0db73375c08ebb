package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/model"
	"github.com/Deus-Ex-Umbra/sicoprot-sis325-sub000/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	idCounter int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.idCounter++
		user.UserID = fmt.Sprintf("user-%d", m.idCounter)
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students  map[string]*model.Student
	idCounter int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		m.idCounter++
		student.StudentID = fmt.Sprintf("stu-%d", m.idCounter)
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	for _, s := range m.students {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

// ── Mock AdvisorRepository ──

type mockAdvisorRepo struct {
	advisors  map[string]*model.Advisor
	idCounter int
}

func newMockAdvisorRepo() *mockAdvisorRepo {
	return &mockAdvisorRepo{advisors: make(map[string]*model.Advisor)}
}

func (m *mockAdvisorRepo) Create(_ context.Context, advisor *model.Advisor) error {
	if advisor.AdvisorID == "" {
		m.idCounter++
		advisor.AdvisorID = fmt.Sprintf("adv-%d", m.idCounter)
	}
	m.advisors[advisor.AdvisorID] = advisor
	return nil
}

func (m *mockAdvisorRepo) GetByID(_ context.Context, id string) (*model.Advisor, error) {
	if a, ok := m.advisors[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdvisorRepo) GetByUserID(_ context.Context, userID string) (*model.Advisor, error) {
	for _, a := range m.advisors {
		if a.UserID == userID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdvisorRepo) List(_ context.Context) ([]model.Advisor, error) {
	var result []model.Advisor
	for _, a := range m.advisors {
		result = append(result, *a)
	}
	return result, nil
}

// ── Mock PeriodRepository ──

type mockPeriodRepo struct {
	periods   map[string]*model.Period
	idCounter int
}

func newMockPeriodRepo() *mockPeriodRepo {
	return &mockPeriodRepo{periods: make(map[string]*model.Period)}
}

func (m *mockPeriodRepo) Create(_ context.Context, period *model.Period) error {
	if period.PeriodID == "" {
		m.idCounter++
		period.PeriodID = fmt.Sprintf("period-%d", m.idCounter)
	}
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) GetByID(_ context.Context, id string) (*model.Period, error) {
	if p, ok := m.periods[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) GetActive(_ context.Context) (*model.Period, error) {
	for _, p := range m.periods {
		if p.IsActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPeriodRepo) List(_ context.Context) ([]model.Period, error) {
	var result []model.Period
	for _, p := range m.periods {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockPeriodRepo) Update(_ context.Context, period *model.Period) error {
	m.periods[period.PeriodID] = period
	return nil
}

func (m *mockPeriodRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.periods, id)
	return nil
}

func (m *mockPeriodRepo) ClearActive(_ context.Context) error {
	for _, p := range m.periods {
		p.IsActive = false
	}
	return nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	groups    map[string]*model.Group
	members   map[string][]string // group_id → student_id 列表
	idCounter int

	studentRepo *mockStudentRepo
	periodRepo  *mockPeriodRepo
}

func newMockGroupRepo(students *mockStudentRepo, periods *mockPeriodRepo) *mockGroupRepo {
	return &mockGroupRepo{
		groups:      make(map[string]*model.Group),
		members:     make(map[string][]string),
		studentRepo: students,
		periodRepo:  periods,
	}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	if group.GroupID == "" {
		m.idCounter++
		group.GroupID = fmt.Sprintf("grp-%d", m.idCounter)
	}
	group.CreatedAt = time.Now()
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) ListByPeriod(_ context.Context, periodID string) ([]model.Group, error) {
	var result []model.Group
	for _, g := range m.groups {
		if g.PeriodID == periodID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) ListByAdvisor(_ context.Context, advisorID string) ([]model.Group, error) {
	var result []model.Group
	for _, g := range m.groups {
		if g.AdvisorID == advisorID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGroupRepo) Update(_ context.Context, group *model.Group) error {
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.groups, id)
	delete(m.members, id)
	return nil
}

func (m *mockGroupRepo) AddStudent(_ context.Context, groupID, studentID string) error {
	m.members[groupID] = append(m.members[groupID], studentID)
	return nil
}

func (m *mockGroupRepo) RemoveStudent(_ context.Context, groupID, studentID string) error {
	var remaining []string
	for _, id := range m.members[groupID] {
		if id != studentID {
			remaining = append(remaining, id)
		}
	}
	m.members[groupID] = remaining
	return nil
}

func (m *mockGroupRepo) HasStudent(_ context.Context, groupID, studentID string) (bool, error) {
	for _, id := range m.members[groupID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGroupRepo) CountStudents(_ context.Context, groupID string) (int64, error) {
	return int64(len(m.members[groupID])), nil
}

func (m *mockGroupRepo) ListStudents(_ context.Context, groupID string) ([]model.Student, error) {
	var result []model.Student
	for _, id := range m.members[groupID] {
		if s, ok := m.studentRepo.students[id]; ok {
			result = append(result, *s)
		} else {
			result = append(result, model.Student{StudentID: id})
		}
	}
	return result, nil
}

func (m *mockGroupRepo) ActiveGroupOfStudent(_ context.Context, studentID string) (*model.Group, error) {
	for gid, ids := range m.members {
		for _, id := range ids {
			if id != studentID {
				continue
			}
			g := m.groups[gid]
			if g == nil || !g.IsActive {
				continue
			}
			if p, ok := m.periodRepo.periods[g.PeriodID]; ok && !p.IsActive {
				continue
			}
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct {
	projects  map[string]*model.Project
	byPeriod  map[string][]string // period_id → project_id 列表（供导出测试填充）
	idCounter int
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{
		projects: make(map[string]*model.Project),
		byPeriod: make(map[string][]string),
	}
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	if project.ProjectID == "" {
		m.idCounter++
		project.ProjectID = fmt.Sprintf("proj-%d", m.idCounter)
	}
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()
	m.projects[project.ProjectID] = project
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) GetActiveByStudent(_ context.Context, studentID string) (*model.Project, error) {
	for _, p := range m.projects {
		if p.Stage != model.StageFinished && p.HasStudent(studentID) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) ListByAdvisor(_ context.Context, advisorID string) ([]model.Project, error) {
	var result []model.Project
	for _, p := range m.projects {
		if p.AdvisorID != nil && *p.AdvisorID == advisorID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProjectRepo) ListByPeriodGroups(_ context.Context, periodID string) ([]model.Project, error) {
	var result []model.Project
	for _, id := range m.byPeriod[periodID] {
		if p, ok := m.projects[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now()
	m.projects[project.ProjectID] = project
	return nil
}

func (m *mockProjectRepo) AddStudent(_ context.Context, projectID, studentID string) error {
	p, ok := m.projects[projectID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Students = append(p.Students, model.Student{StudentID: studentID})
	return nil
}

// ── Mock DocumentRepository ──

type mockDocumentRepo struct {
	docs      map[string]*model.Document
	idCounter int
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: make(map[string]*model.Document)}
}

func (m *mockDocumentRepo) Create(_ context.Context, doc *model.Document) error {
	if doc.DocumentID == "" {
		m.idCounter++
		doc.DocumentID = fmt.Sprintf("doc-%d", m.idCounter)
	}
	doc.CreatedAt = time.Now()
	m.docs[doc.DocumentID] = doc
	return nil
}

func (m *mockDocumentRepo) GetByID(_ context.Context, id string) (*model.Document, error) {
	if d, ok := m.docs[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentRepo) ListByProject(_ context.Context, projectID string) ([]model.Document, error) {
	var result []model.Document
	for _, d := range m.docs {
		if d.ProjectID == projectID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDocumentRepo) MaxVersion(_ context.Context, projectID string) (int, error) {
	max := 0
	for _, d := range m.docs {
		if d.ProjectID == projectID && d.DocVersion > max {
			max = d.DocVersion
		}
	}
	return max, nil
}

func (m *mockDocumentRepo) CountByProjectStage(_ context.Context, projectID, stage string) (int64, error) {
	var n int64
	for _, d := range m.docs {
		if d.ProjectID == projectID && d.Stage == stage {
			n++
		}
	}
	return n, nil
}

// ── Mock ObservationRepository ──

type mockObservationRepo struct {
	observations map[string]*model.Observation
	idCounter    int

	docRepo *mockDocumentRepo
}

func newMockObservationRepo(docs *mockDocumentRepo) *mockObservationRepo {
	return &mockObservationRepo{
		observations: make(map[string]*model.Observation),
		docRepo:      docs,
	}
}

func (m *mockObservationRepo) Create(_ context.Context, obs *model.Observation) error {
	if obs.ObservationID == "" {
		m.idCounter++
		obs.ObservationID = fmt.Sprintf("obs-%d", m.idCounter)
	}
	obs.CreatedAt = time.Now()
	m.observations[obs.ObservationID] = obs
	return nil
}

func (m *mockObservationRepo) GetByID(_ context.Context, id string) (*model.Observation, error) {
	if o, ok := m.observations[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockObservationRepo) ListByProject(_ context.Context, projectID string, includeArchived bool) ([]model.Observation, error) {
	var result []model.Observation
	for _, o := range m.observations {
		if o.ProjectID != projectID {
			continue
		}
		if !includeArchived && o.Archived {
			continue
		}
		result = append(result, *o)
	}
	return result, nil
}

func (m *mockObservationRepo) ListByDocument(_ context.Context, documentID string) ([]model.Observation, error) {
	var result []model.Observation
	for _, o := range m.observations {
		if o.DocumentID != nil && *o.DocumentID == documentID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *mockObservationRepo) Update(_ context.Context, obs *model.Observation) error {
	m.observations[obs.ObservationID] = obs
	return nil
}

func (m *mockObservationRepo) CountPendingByStage(_ context.Context, projectID, stage string) (int64, error) {
	var n int64
	for _, o := range m.observations {
		if o.ProjectID != projectID || o.Archived {
			continue
		}
		if o.Status != model.ObservationPending && o.Status != model.ObservationRejected {
			continue
		}
		switch o.Scope {
		case model.ScopeDocument:
			if o.DocumentID == nil {
				continue
			}
			if d, ok := m.docRepo.docs[*o.DocumentID]; ok && d.Stage == stage {
				n++
			}
		case model.ScopeProject:
			if stage == model.StageProject {
				n++
			}
		}
	}
	return n, nil
}

// ── Mock CorrectionRepository ──

type mockCorrectionRepo struct {
	corrections map[string]*model.Correction
	idCounter   int
}

func newMockCorrectionRepo() *mockCorrectionRepo {
	return &mockCorrectionRepo{corrections: make(map[string]*model.Correction)}
}

func (m *mockCorrectionRepo) Create(_ context.Context, correction *model.Correction) error {
	if correction.CorrectionID == "" {
		m.idCounter++
		correction.CorrectionID = fmt.Sprintf("corr-%d", m.idCounter)
	}
	correction.CreatedAt = time.Now()
	m.corrections[correction.CorrectionID] = correction
	return nil
}

func (m *mockCorrectionRepo) GetByID(_ context.Context, id string) (*model.Correction, error) {
	if c, ok := m.corrections[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCorrectionRepo) GetByObservation(_ context.Context, observationID string) (*model.Correction, error) {
	for _, c := range m.corrections {
		if c.ObservationID == observationID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCorrectionRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.corrections[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.corrections, id)
	return nil
}

// ── Mock ProposalRepository ──

type mockProposalRepo struct {
	proposals map[string]*model.Proposal
	idCounter int
}

func newMockProposalRepo() *mockProposalRepo {
	return &mockProposalRepo{proposals: make(map[string]*model.Proposal)}
}

func (m *mockProposalRepo) Create(_ context.Context, proposal *model.Proposal) error {
	if proposal.ProposalID == "" {
		m.idCounter++
		proposal.ProposalID = fmt.Sprintf("prop-%d", m.idCounter)
	}
	proposal.CreatedAt = time.Now()
	m.proposals[proposal.ProposalID] = proposal
	return nil
}

func (m *mockProposalRepo) GetByID(_ context.Context, id string) (*model.Proposal, error) {
	if p, ok := m.proposals[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProposalRepo) ListByProject(_ context.Context, projectID string) ([]model.Proposal, error) {
	var result []model.Proposal
	for _, p := range m.proposals {
		if p.ProjectID == projectID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProposalRepo) Update(_ context.Context, proposal *model.Proposal) error {
	m.proposals[proposal.ProposalID] = proposal
	return nil
}

func (m *mockProposalRepo) RejectOtherPending(_ context.Context, projectID, exceptID string) error {
	for _, p := range m.proposals {
		if p.ProjectID == projectID && p.ProposalID != exceptID && p.Status == model.ProposalPending {
			p.Status = model.ProposalRejected
		}
	}
	return nil
}

// ── Mock MeetingRepository ──

type mockMeetingRepo struct {
	meetings  map[string]*model.Meeting
	idCounter int
}

func newMockMeetingRepo() *mockMeetingRepo {
	return &mockMeetingRepo{meetings: make(map[string]*model.Meeting)}
}

func (m *mockMeetingRepo) Create(_ context.Context, meeting *model.Meeting) error {
	if meeting.MeetingID == "" {
		m.idCounter++
		meeting.MeetingID = fmt.Sprintf("meet-%d", m.idCounter)
	}
	meeting.CreatedAt = time.Now()
	m.meetings[meeting.MeetingID] = meeting
	return nil
}

func (m *mockMeetingRepo) GetByID(_ context.Context, id string) (*model.Meeting, error) {
	if mt, ok := m.meetings[id]; ok {
		return mt, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMeetingRepo) ListByProject(_ context.Context, projectID string) ([]model.Meeting, error) {
	var result []model.Meeting
	for _, mt := range m.meetings {
		if mt.ProjectID == projectID {
			result = append(result, *mt)
		}
	}
	return result, nil
}

func (m *mockMeetingRepo) ListByAdvisor(_ context.Context, advisorID string) ([]model.Meeting, error) {
	var result []model.Meeting
	for _, mt := range m.meetings {
		if mt.AdvisorID == advisorID {
			result = append(result, *mt)
		}
	}
	return result, nil
}

func (m *mockMeetingRepo) Update(_ context.Context, meeting *model.Meeting) error {
	m.meetings[meeting.MeetingID] = meeting
	return nil
}

// ── 测试辅助：组装聚合 Repository ──

// testRepos 持有全部 mock，便于测试直接读写底层数据
type testRepos struct {
	user        *mockUserRepo
	student     *mockStudentRepo
	advisor     *mockAdvisorRepo
	period      *mockPeriodRepo
	group       *mockGroupRepo
	project     *mockProjectRepo
	document    *mockDocumentRepo
	observation *mockObservationRepo
	correction  *mockCorrectionRepo
	proposal    *mockProposalRepo
	meeting     *mockMeetingRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	students := newMockStudentRepo()
	periods := newMockPeriodRepo()
	docs := newMockDocumentRepo()

	mocks := &testRepos{
		user:        newMockUserRepo(),
		student:     students,
		advisor:     newMockAdvisorRepo(),
		period:      periods,
		group:       newMockGroupRepo(students, periods),
		project:     newMockProjectRepo(),
		document:    docs,
		observation: newMockObservationRepo(docs),
		correction:  newMockCorrectionRepo(),
		proposal:    newMockProposalRepo(),
		meeting:     newMockMeetingRepo(),
	}

	repo := &repository.Repository{
		User:        mocks.user,
		Student:     mocks.student,
		Advisor:     mocks.advisor,
		Period:      mocks.period,
		Group:       mocks.group,
		Project:     mocks.project,
		Document:    mocks.document,
		Observation: mocks.observation,
		Correction:  mocks.correction,
		Proposal:    mocks.proposal,
		Meeting:     mocks.meeting,
	}
	return repo, mocks
}
