package review

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/deadline"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

var errInjected = errors.New("injected failure")

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) WithinSavepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// clock hands out strictly increasing timestamps.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) tick() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

type memReviews struct {
	mu    sync.Mutex
	clock *clock
	byID  map[string]review.Review
	// onLock runs after LockEmployee, standing in for a creator that won the race.
	onLock func(employeeID string)
	locks  int
}

func (m *memReviews) GetActiveByEmployee(ctx context.Context, employeeID string) (review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var (
		latest review.Review
		found  bool
	)
	for _, r := range m.byID {
		if r.EmployeeID == employeeID && (!found || r.CreatedAt.After(latest.CreatedAt)) {
			latest, found = r, true
		}
	}
	if !found {
		return review.Review{}, review.ErrReviewNotFound
	}
	return latest, nil
}

func (m *memReviews) GetByID(ctx context.Context, id string) (review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return review.Review{}, review.ErrReviewNotFound
	}
	return r, nil
}

func (m *memReviews) GetForUpdate(ctx context.Context, id string) (review.Review, error) {
	return m.GetByID(ctx, id)
}

func (m *memReviews) LockEmployee(ctx context.Context, employeeID string) error {
	m.mu.Lock()
	m.locks++
	hook := m.onLock
	m.mu.Unlock()
	if hook != nil {
		hook(employeeID)
	}
	return nil
}

func (m *memReviews) Create(ctx context.Context, r review.Review) (review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.CreatedAt = m.clock.tick()
	r.UpdatedAt = r.CreatedAt
	m.byID[r.ID] = r
	return r, nil
}

func (m *memReviews) UpdateEmployeeFields(ctx context.Context, r review.Review) (review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[r.ID]
	if !ok {
		return review.Review{}, review.ErrReviewNotFound
	}
	cur.Department = r.Department
	cur.CurrentPosition = r.CurrentPosition
	cur.PositionStartDate = r.PositionStartDate
	cur.LongTermGoal = r.LongTermGoal
	cur.EmployeeComment = r.EmployeeComment
	cur.Status = r.Status
	cur.UpdatedAt = m.clock.tick()
	m.byID[r.ID] = cur
	return cur, nil
}

func (m *memReviews) UpdateSupervisorComment(ctx context.Context, id, comment string) (review.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return review.Review{}, review.ErrReviewNotFound
	}
	cur.SupervisorComment = comment
	cur.UpdatedAt = m.clock.tick()
	m.byID[id] = cur
	return cur, nil
}

func (m *memReviews) Touch(ctx context.Context, id string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return time.Time{}, review.ErrReviewNotFound
	}
	cur.UpdatedAt = m.clock.tick()
	m.byID[id] = cur
	return cur.UpdatedAt, nil
}

func (m *memReviews) ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]review.Review, error) {
	var out []review.Review
	for _, id := range employeeIDs {
		r, err := m.GetActiveByEmployee(ctx, id)
		if err == nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReviews) ListOpen(ctx context.Context) ([]review.Review, error) {
	m.mu.Lock()
	employees := map[string]bool{}
	for _, r := range m.byID {
		employees[r.EmployeeID] = true
	}
	m.mu.Unlock()

	var out []review.Review
	for id := range employees {
		r, _ := m.GetActiveByEmployee(ctx, id)
		if r.Status != review.StatusSubmitted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReviews) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memKPIs struct {
	mu       sync.Mutex
	byReview map[string][]review.KPI
	failOn   map[string]bool
	writes   int
}

func (m *memKPIs) ListByReview(ctx context.Context, reviewID string) ([]review.KPI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]review.KPI(nil), m.byReview[reviewID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memKPIs) Create(ctx context.Context, k review.KPI) (review.KPI, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[k.Description] {
		return review.KPI{}, errInjected
	}
	m.writes++
	m.byReview[k.ReviewID] = append(m.byReview[k.ReviewID], k)
	return k, nil
}

func (m *memKPIs) Update(ctx context.Context, k review.KPI) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[k.Description] {
		return errInjected
	}
	for i, cur := range m.byReview[k.ReviewID] {
		if cur.ID == k.ID {
			m.writes++
			m.byReview[k.ReviewID][i] = k
			return nil
		}
	}
	return review.ErrKPINotFound
}

func (m *memKPIs) UpdateRating(ctx context.Context, reviewID, kpiID string, rating decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.byReview[reviewID] {
		if cur.ID == kpiID {
			if m.failOn[cur.Description] {
				return errInjected
			}
			m.writes++
			m.byReview[reviewID][i].SupervisorRating = review.NullRating(rating)
			return nil
		}
	}
	return review.ErrKPINotFound
}

func (m *memKPIs) Delete(ctx context.Context, reviewID, kpiID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kpis := m.byReview[reviewID]
	for i, cur := range kpis {
		if cur.ID == kpiID {
			m.writes++
			m.byReview[reviewID] = append(kpis[:i:i], kpis[i+1:]...)
			return nil
		}
	}
	return review.ErrKPINotFound
}

type memSkills struct {
	mu       sync.Mutex
	byReview map[string][]review.SkillEvaluation
}

func (m *memSkills) ListByReview(ctx context.Context, reviewID string) ([]review.SkillEvaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]review.SkillEvaluation(nil), m.byReview[reviewID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].SkillName < out[j].SkillName })
	return out, nil
}

func (m *memSkills) Create(ctx context.Context, s review.SkillEvaluation) (review.SkillEvaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byReview[s.ReviewID] = append(m.byReview[s.ReviewID], s)
	return s, nil
}

func (m *memSkills) UpdateLevel(ctx context.Context, reviewID, skillName string, level review.SkillLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.byReview[reviewID] {
		if cur.SkillName == skillName {
			m.byReview[reviewID][i].Level = level
			return nil
		}
	}
	return review.ErrSkillNotFound
}

func (m *memSkills) Delete(ctx context.Context, reviewID, skillName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	skills := m.byReview[reviewID]
	for i, cur := range skills {
		if cur.SkillName == skillName {
			m.byReview[reviewID] = append(skills[:i:i], skills[i+1:]...)
			return nil
		}
	}
	return review.ErrSkillNotFound
}

type memGoals struct {
	mu       sync.Mutex
	clock    *clock
	byReview map[string][]review.DevelopmentGoal
}

func (m *memGoals) ListByReview(ctx context.Context, reviewID string) ([]review.DevelopmentGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]review.DevelopmentGoal(nil), m.byReview[reviewID]...), nil
}

func (m *memGoals) Create(ctx context.Context, g review.DevelopmentGoal) (review.DevelopmentGoal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g.CreatedAt = m.clock.tick()
	m.byReview[g.ReviewID] = append(m.byReview[g.ReviewID], g)
	return g, nil
}

func (m *memGoals) Delete(ctx context.Context, reviewID, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	goals := m.byReview[reviewID]
	for i, cur := range goals {
		if cur.ID == goalID {
			m.byReview[reviewID] = append(goals[:i:i], goals[i+1:]...)
			return nil
		}
	}
	return review.ErrGoalNotFound
}

type memUsers struct {
	user.UserRepository
	byID map[string]user.User
}

func (m *memUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

type memRelations struct {
	organization.RelationRepository
	supervisorOf map[string]string
}

func (m *memRelations) GetSupervisorID(ctx context.Context, employeeID string) (string, error) {
	id, ok := m.supervisorOf[employeeID]
	if !ok {
		return "", organization.ErrRelationNotFound
	}
	return id, nil
}

func (m *memRelations) IsDirectSupervisor(ctx context.Context, supervisorID, employeeID string) (bool, error) {
	return m.supervisorOf[employeeID] == supervisorID, nil
}

type stubDeadlines struct {
	mu      sync.Mutex
	checked []string
	info    deadline.Info
}

func (s *stubDeadlines) Info(ctx context.Context, userID string) (deadline.Info, error) {
	return s.info, nil
}

func (s *stubDeadlines) Check(ctx context.Context, userID string) (deadline.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = append(s.checked, userID)
	return deadline.CheckResult{Info: s.info}, nil
}

func (s *stubDeadlines) Sweep(ctx context.Context) (deadline.SweepResult, error) {
	return deadline.SweepResult{}, nil
}
