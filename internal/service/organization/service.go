package organization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

type OrganizationServiceImpl struct {
	organization.RelationRepository
	users   user.UserRepository
	reviews review.ReviewRepository
}

func NewOrganizationService(relationRepository organization.RelationRepository, userRepository user.UserRepository, reviewRepository review.ReviewRepository) organization.OrganizationService {
	return &OrganizationServiceImpl{
		RelationRepository: relationRepository,
		users:              userRepository,
		reviews:            reviewRepository,
	}
}

// ListSupervisors implements organization.OrganizationService.
func (s *OrganizationServiceImpl) ListSupervisors(ctx context.Context) ([]organization.SupervisorOption, error) {
	supervisors, err := s.users.ListByRole(ctx, user.RoleSupervisor)
	if err != nil {
		return nil, fmt.Errorf("failed to list supervisors: %w", err)
	}

	options := make([]organization.SupervisorOption, len(supervisors))
	for i, p := range supervisors {
		options[i] = organization.SupervisorOption{ID: p.ID, Name: p.FullName()}
	}
	sort.Slice(options, func(i, j int) bool {
		return strings.ToLower(options[i].Name) < strings.ToLower(options[j].Name)
	})

	return options, nil
}

// GetTeam implements organization.OrganizationService.
func (s *OrganizationServiceImpl) GetTeam(ctx context.Context, actor user.Actor) (organization.TeamResponse, error) {
	if !actor.Roles.IsSupervisor() {
		return organization.TeamResponse{}, user.ErrSupervisorAccessRequired
	}

	employees, err := s.RelationRepository.ListEmployees(ctx, actor.ID)
	if err != nil {
		return organization.TeamResponse{}, fmt.Errorf("failed to list team: %w", err)
	}

	members, err := s.withReviews(ctx, employees)
	if err != nil {
		return organization.TeamResponse{}, err
	}

	return organization.TeamResponse{
		SupervisorID: actor.ID,
		Members:      members,
	}, nil
}

// GetOrganization implements organization.OrganizationService.
func (s *OrganizationServiceImpl) GetOrganization(ctx context.Context, actor user.Actor) (organization.OrganizationResponse, error) {
	if !actor.Roles.IsHRManager() {
		return organization.OrganizationResponse{}, user.ErrHRManagerAccessRequired
	}

	var (
		supervisors []user.Profile
		relations   []organization.Relation
		unassigned  []user.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		supervisors, err = s.users.ListByRole(gctx, user.RoleSupervisor)
		if err != nil {
			return fmt.Errorf("failed to list supervisors: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		relations, err = s.RelationRepository.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("failed to list relations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		unassigned, err = s.RelationRepository.ListUnassigned(gctx)
		if err != nil {
			return fmt.Errorf("failed to list unassigned employees: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return organization.OrganizationResponse{}, err
	}

	employeeIDs := make([]string, 0, len(relations))
	for _, r := range relations {
		employeeIDs = append(employeeIDs, r.EmployeeID)
	}
	employees, err := s.users.GetProfiles(ctx, employeeIDs)
	if err != nil {
		return organization.OrganizationResponse{}, fmt.Errorf("failed to get employees: %w", err)
	}

	all := append(append([]user.Profile{}, employees...), unassigned...)
	members, err := s.withReviews(ctx, all)
	if err != nil {
		return organization.OrganizationResponse{}, err
	}
	memberByID := make(map[string]organization.TeamMember, len(members))
	for _, m := range members {
		memberByID[m.ID] = m
	}

	teams := make(map[string][]organization.TeamMember, len(supervisors))
	for _, r := range relations {
		if m, ok := memberByID[r.EmployeeID]; ok {
			teams[r.SupervisorID] = append(teams[r.SupervisorID], m)
		}
	}

	resp := organization.OrganizationResponse{
		Supervisors: make([]organization.SupervisorTeam, 0, len(supervisors)),
		Unassigned:  make([]organization.TeamMember, 0, len(unassigned)),
	}
	for _, sup := range supervisors {
		team := teams[sup.ID]
		sortMembers(team)
		if team == nil {
			team = []organization.TeamMember{}
		}
		resp.Supervisors = append(resp.Supervisors, organization.SupervisorTeam{
			Supervisor: sup,
			Members:    team,
		})
	}
	for _, p := range unassigned {
		resp.Unassigned = append(resp.Unassigned, memberByID[p.ID])
	}
	sortMembers(resp.Unassigned)

	return resp, nil
}

// AssignSupervisor implements organization.OrganizationService.
func (s *OrganizationServiceImpl) AssignSupervisor(ctx context.Context, actor user.Actor, req organization.AssignSupervisorRequest) error {
	if !actor.Roles.IsHRManager() {
		return user.ErrHRManagerAccessRequired
	}

	employeeID := strings.TrimSpace(req.EmployeeID)
	supervisorID := strings.TrimSpace(req.SupervisorID)

	if _, err := s.users.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return organization.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to get employee: %w", err)
	}

	supervisor, err := s.users.GetByID(ctx, supervisorID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return organization.ErrSupervisorNotFound
		}
		return fmt.Errorf("failed to get supervisor: %w", err)
	}
	if !supervisor.Roles.IsSupervisor() {
		return organization.ErrNotASupervisor
	}

	if err := s.checkCycle(ctx, employeeID, supervisorID); err != nil {
		return err
	}

	if err := s.RelationRepository.Assign(ctx, supervisorID, employeeID); err != nil {
		return fmt.Errorf("failed to assign supervisor: %w", err)
	}

	slog.Info("supervisor assigned",
		"employee_id", employeeID,
		"supervisor_id", supervisorID,
		"assigned_by", actor.ID,
	)
	return nil
}

// checkCycle walks up the chain above supervisorID and fails when it reaches employeeID.
func (s *OrganizationServiceImpl) checkCycle(ctx context.Context, employeeID, supervisorID string) error {
	if employeeID == supervisorID {
		return organization.ErrSupervisionCycle
	}

	visited := map[string]bool{supervisorID: true}
	current := supervisorID
	for {
		next, err := s.RelationRepository.GetSupervisorID(ctx, current)
		if errors.Is(err, organization.ErrRelationNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to walk supervisor chain: %w", err)
		}
		if next == employeeID {
			return organization.ErrSupervisionCycle
		}
		if visited[next] {
			return nil
		}
		visited[next] = true
		current = next
	}
}

// withReviews attaches the active review state to each profile.
func (s *OrganizationServiceImpl) withReviews(ctx context.Context, profiles []user.Profile) ([]organization.TeamMember, error) {
	members := make([]organization.TeamMember, len(profiles))
	if len(profiles) == 0 {
		return members, nil
	}

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}
	reviews, err := s.reviews.ListActiveByEmployees(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	byEmployee := make(map[string]review.Review, len(reviews))
	for _, r := range reviews {
		byEmployee[r.EmployeeID] = r
	}

	for i, p := range profiles {
		members[i] = organization.TeamMember{Profile: p}
		if r, ok := byEmployee[p.ID]; ok {
			id, status, updatedAt := r.ID, r.Status, r.UpdatedAt
			members[i].ReviewID = &id
			members[i].ReviewStatus = &status
			members[i].ReviewUpdatedAt = &updatedAt
		}
	}
	sortMembers(members)
	return members, nil
}

func sortMembers(members []organization.TeamMember) {
	sort.Slice(members, func(i, j int) bool {
		return strings.ToLower(members[i].FullName()) < strings.ToLower(members[j].FullName())
	})
}
