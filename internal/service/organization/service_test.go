package organization

import (
	"context"
	"sort"
	"testing"

	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/organization"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/review"
	"github.com/cmlabs-hris/performance-review-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func (m *memUsers) ListByRole(ctx context.Context, role user.Role) ([]user.Profile, error) {
	var out []user.Profile
	for _, u := range m.byID {
		if u.Roles.Has(role) {
			out = append(out, u.Profile())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) GetProfiles(ctx context.Context, ids []string) ([]user.Profile, error) {
	var out []user.Profile
	for _, id := range ids {
		if u, ok := m.byID[id]; ok {
			out = append(out, u.Profile())
		}
	}
	return out, nil
}

type memRelations struct {
	users        *memUsers
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

func (m *memRelations) Assign(ctx context.Context, supervisorID, employeeID string) error {
	m.supervisorOf[employeeID] = supervisorID
	return nil
}

func (m *memRelations) Unassign(ctx context.Context, employeeID string) error {
	delete(m.supervisorOf, employeeID)
	return nil
}

func (m *memRelations) ListEmployees(ctx context.Context, supervisorID string) ([]user.Profile, error) {
	var out []user.Profile
	for emp, sup := range m.supervisorOf {
		if sup == supervisorID {
			out = append(out, m.users.byID[emp].Profile())
		}
	}
	return out, nil
}

func (m *memRelations) ListAll(ctx context.Context) ([]organization.Relation, error) {
	var out []organization.Relation
	for emp, sup := range m.supervisorOf {
		out = append(out, organization.Relation{SupervisorID: sup, EmployeeID: emp})
	}
	return out, nil
}

func (m *memRelations) ListUnassigned(ctx context.Context) ([]user.Profile, error) {
	var out []user.Profile
	for id, u := range m.users.byID {
		if _, ok := m.supervisorOf[id]; !ok && !u.Roles.IsHRManager() {
			out = append(out, u.Profile())
		}
	}
	return out, nil
}

type memReviews struct {
	review.ReviewRepository
	byEmployee map[string]review.Review
}

func (m *memReviews) ListActiveByEmployees(ctx context.Context, employeeIDs []string) ([]review.Review, error) {
	var out []review.Review
	for _, id := range employeeIDs {
		if r, ok := m.byEmployee[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type fixture struct {
	svc       organization.OrganizationService
	users     *memUsers
	relations *memRelations
}

// newFixture:
//
//	hr-1
//	└── sup-1
//	    ├── emp-1 (borrador)
//	    └── sup-2
//	        └── emp-2
//	emp-3 has no supervisor
func newFixture() *fixture {
	users := &memUsers{byID: map[string]user.User{}}
	add := func(id, first, last string, role user.Role) {
		users.byID[id] = user.User{ID: id, Email: id + "@example.com", FirstName: first, LastName: last, Roles: user.GrantedRoles(role)}
	}
	add("hr-1", "Carla", "Ruiz", user.RoleHRManager)
	add("sup-1", "Bruno", "Díaz", user.RoleSupervisor)
	add("sup-2", "Zoe", "Mora", user.RoleSupervisor)
	add("emp-1", "Ana", "Gil", user.RoleEmployee)
	add("emp-2", "Luis", "Soto", user.RoleEmployee)
	add("emp-3", "Marta", "Vega", user.RoleEmployee)

	relations := &memRelations{users: users, supervisorOf: map[string]string{
		"sup-1": "hr-1",
		"sup-2": "sup-1",
		"emp-1": "sup-1",
		"emp-2": "sup-2",
	}}
	reviews := &memReviews{byEmployee: map[string]review.Review{
		"emp-1": {ID: "rev-1", EmployeeID: "emp-1", Status: review.StatusDraft},
	}}

	return &fixture{
		svc:       NewOrganizationService(relations, users, reviews),
		users:     users,
		relations: relations,
	}
}

func (f *fixture) actor(id string) user.Actor {
	u := f.users.byID[id]
	return user.Actor{ID: u.ID, Email: u.Email, Roles: u.Roles}
}

func TestListSupervisors_SortedByName(t *testing.T) {
	f := newFixture()

	options, err := f.svc.ListSupervisors(context.Background())
	require.NoError(t, err)

	names := make([]string, len(options))
	for i, o := range options {
		names[i] = o.Name
	}
	assert.Equal(t, []string{"Bruno Díaz", "Carla Ruiz", "Zoe Mora"}, names)
}

func TestGetTeam(t *testing.T) {
	f := newFixture()

	team, err := f.svc.GetTeam(context.Background(), f.actor("sup-1"))
	require.NoError(t, err)
	assert.Equal(t, "sup-1", team.SupervisorID)
	require.Len(t, team.Members, 2)

	assert.Equal(t, "emp-1", team.Members[0].ID)
	require.NotNil(t, team.Members[0].ReviewStatus)
	assert.Equal(t, review.StatusDraft, *team.Members[0].ReviewStatus)
	assert.Equal(t, "sup-2", team.Members[1].ID)
	assert.Nil(t, team.Members[1].ReviewID)

	_, err = f.svc.GetTeam(context.Background(), f.actor("emp-1"))
	assert.ErrorIs(t, err, user.ErrSupervisorAccessRequired)
}

func TestGetOrganization(t *testing.T) {
	f := newFixture()

	org, err := f.svc.GetOrganization(context.Background(), f.actor("hr-1"))
	require.NoError(t, err)

	teams := map[string][]string{}
	for _, st := range org.Supervisors {
		ids := []string{}
		for _, m := range st.Members {
			ids = append(ids, m.ID)
		}
		teams[st.Supervisor.ID] = ids
	}
	assert.Equal(t, map[string][]string{
		"hr-1":  {"sup-1"},
		"sup-1": {"emp-1", "sup-2"},
		"sup-2": {"emp-2"},
	}, teams)

	require.Len(t, org.Unassigned, 1)
	assert.Equal(t, "emp-3", org.Unassigned[0].ID)

	_, err = f.svc.GetOrganization(context.Background(), f.actor("sup-1"))
	assert.ErrorIs(t, err, user.ErrHRManagerAccessRequired)
}

func TestAssignSupervisor(t *testing.T) {
	tests := []struct {
		name    string
		actorID string
		req     organization.AssignSupervisorRequest
		wantErr error
	}{
		{"assigns orphan", "hr-1", organization.AssignSupervisorRequest{EmployeeID: "emp-3", SupervisorID: "sup-2"}, nil},
		{"replaces supervisor", "hr-1", organization.AssignSupervisorRequest{EmployeeID: "emp-2", SupervisorID: "sup-1"}, nil},
		{"hr only", "sup-1", organization.AssignSupervisorRequest{EmployeeID: "emp-3", SupervisorID: "sup-1"}, user.ErrHRManagerAccessRequired},
		{"unknown employee", "hr-1", organization.AssignSupervisorRequest{EmployeeID: "ghost", SupervisorID: "sup-1"}, organization.ErrEmployeeNotFound},
		{"unknown supervisor", "hr-1", organization.AssignSupervisorRequest{EmployeeID: "emp-3", SupervisorID: "ghost"}, organization.ErrSupervisorNotFound},
		{"not a supervisor", "hr-1", organization.AssignSupervisorRequest{EmployeeID: "emp-3", SupervisorID: "emp-1"}, organization.ErrNotASupervisor},
		{"direct cycle", "hr-1", organization.AssignSupervisorRequest{EmployeeID: "sup-1", SupervisorID: "sup-2"}, organization.ErrSupervisionCycle},
		{"cycle through the top", "hr-1", organization.AssignSupervisorRequest{EmployeeID: "hr-1", SupervisorID: "sup-2"}, organization.ErrSupervisionCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			before := f.relations.supervisorOf[tt.req.EmployeeID]

			err := f.svc.AssignSupervisor(context.Background(), f.actor(tt.actorID), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, f.relations.supervisorOf[tt.req.EmployeeID])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.SupervisorID, f.relations.supervisorOf[tt.req.EmployeeID])
		})
	}
}
