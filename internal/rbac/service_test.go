package rbac

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/pkg/db/models"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
)

type stubRepo struct {
	modules     []models.ModuleAccess
	permissions []models.Permission
	groups      map[uint]*models.Group
	nextGroupID uint
	assigned    map[uuid.UUID][]models.Group
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		groups:      map[uint]*models.Group{},
		nextGroupID: 1,
		assigned:    map[uuid.UUID][]models.Group{},
	}
}

func (s *stubRepo) ListModuleAccess(context.Context) ([]models.ModuleAccess, error) {
	return s.modules, nil
}

func (s *stubRepo) ListPermissions(context.Context) ([]models.Permission, error) {
	return s.permissions, nil
}

func (s *stubRepo) FindModuleAccessByIDs(_ context.Context, ids []uint) ([]models.ModuleAccess, error) {
	var out []models.ModuleAccess
	for _, m := range s.modules {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (s *stubRepo) FindPermissionsByIDs(_ context.Context, ids []uint) ([]models.Permission, error) {
	var out []models.Permission
	for _, p := range s.permissions {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (s *stubRepo) ListGroups(context.Context) ([]models.Group, error) {
	var out []models.Group
	for _, g := range s.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (s *stubRepo) FindGroupByID(_ context.Context, id uint) (*models.Group, error) {
	group, ok := s.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return group, nil
}

func (s *stubRepo) FindGroupsByIDs(_ context.Context, ids []uint) ([]models.Group, error) {
	var out []models.Group
	for _, id := range ids {
		if g, ok := s.groups[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (s *stubRepo) CreateGroup(_ context.Context, group *models.Group) error {
	group.ID = s.nextGroupID
	s.nextGroupID++
	s.groups[group.ID] = group
	return nil
}

func (s *stubRepo) UpdateGroup(_ context.Context, group *models.Group, modules []models.ModuleAccess, permissions []models.Permission) error {
	existing, ok := s.groups[group.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Name = group.Name
	existing.ModuleAccess = modules
	existing.Permissions = permissions
	return nil
}

func (s *stubRepo) DeleteGroup(_ context.Context, id uint) error {
	if _, ok := s.groups[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.groups, id)
	return nil
}

func (s *stubRepo) ReplaceUserGroups(_ context.Context, userID uuid.UUID, groups []models.Group) error {
	s.assigned[userID] = groups
	return nil
}

func (s *stubRepo) EffectiveModuleAccess(_ context.Context, userID uuid.UUID) ([]models.ModuleAccess, error) {
	seen := map[uint]models.ModuleAccess{}
	for _, g := range s.assigned[userID] {
		if full, ok := s.groups[g.ID]; ok {
			for _, m := range full.ModuleAccess {
				seen[m.ID] = m
			}
		}
	}
	var out []models.ModuleAccess
	for _, m := range seen {
		out = append(out, m)
	}
	return out, nil
}

type stubUsers struct {
	byID map[uuid.UUID]*models.User
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubActivity struct {
	actions []string
}

func (s *stubActivity) Record(_ context.Context, _ *uuid.UUID, action string) {
	s.actions = append(s.actions, action)
}

func newTestService(t *testing.T) (Service, *stubRepo, *stubUsers, *stubActivity) {
	t.Helper()

	repo := newStubRepo()
	users := &stubUsers{byID: map[uuid.UUID]*models.User{}}
	activity := &stubActivity{}
	svc, err := NewService(repo, users, activity)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, users, activity
}

func TestCreateGroupValidatesReferencedIDs(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.modules = []models.ModuleAccess{{ID: 1, URL: "/dashboard", Name: "Dashboard"}}

	_, err := svc.CreateGroup(context.Background(), GroupInput{
		Name:            "Support",
		ModuleAccessIDs: []uint{1, 7},
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	typed := pkgerrors.As(err)
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	missing, ok := details["missing_ids"].([]uint)
	if !ok || len(missing) != 1 || missing[0] != 7 {
		t.Fatalf("expected missing_ids [7], got %v", details["missing_ids"])
	}
	if len(repo.groups) != 0 {
		t.Fatal("no group should be created on validation failure")
	}
}

func TestCreateGroupRequiresName(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.CreateGroup(context.Background(), GroupInput{Name: "  "})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateAndGetGroup(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.modules = []models.ModuleAccess{{ID: 1, URL: "/dashboard", Name: "Dashboard"}}
	repo.permissions = []models.Permission{{ID: 2, Codename: "users.view", Name: "View users"}}

	created, err := svc.CreateGroup(context.Background(), GroupInput{
		Name:            "Support",
		ModuleAccessIDs: []uint{1},
		PermissionIDs:   []uint{2},
	})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := svc.GetGroup(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if len(got.ModuleAccess) != 1 || len(got.Permissions) != 1 {
		t.Fatalf("unexpected grants: %+v", got)
	}
}

func TestGetGroupNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.GetGroup(context.Background(), 99)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestAssignRolesRejectsMissingIDsWithoutChange(t *testing.T) {
	svc, repo, users, _ := newTestService(t)
	repo.groups[1] = &models.Group{ID: 1, Name: "A"}

	id := uuid.New()
	users.byID[id] = &models.User{ID: id}

	err := svc.AssignRoles(context.Background(), id, []uint{1, 5, 6})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	details := pkgerrors.As(err).Details().(map[string]any)
	missing := details["missing_ids"].([]uint)
	if len(missing) != 2 {
		t.Fatalf("expected exactly the missing set, got %v", missing)
	}
	if _, changed := repo.assigned[id]; changed {
		t.Fatal("membership must not change when any id is unknown")
	}
}

func TestAssignRolesReplacesMembership(t *testing.T) {
	svc, repo, users, activity := newTestService(t)
	repo.groups[1] = &models.Group{ID: 1, Name: "A"}
	repo.groups[2] = &models.Group{ID: 2, Name: "B"}

	id := uuid.New()
	users.byID[id] = &models.User{ID: id}

	if err := svc.AssignRoles(context.Background(), id, []uint{1, 2, 2}); err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}
	if len(repo.assigned[id]) != 2 {
		t.Fatalf("expected 2 groups after dedupe, got %d", len(repo.assigned[id]))
	}
	if len(activity.actions) != 1 {
		t.Fatal("expected activity entry")
	}
}

func TestAssignRolesUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	err := svc.AssignRoles(context.Background(), uuid.New(), []uint{1})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestEffectiveModuleAccessDeduplicates(t *testing.T) {
	svc, repo, users, _ := newTestService(t)
	dashboard := models.ModuleAccess{ID: 1, URL: "/dashboard", Name: "Dashboard"}
	roles := models.ModuleAccess{ID: 2, URL: "/roles", Name: "Roles"}
	repo.groups[1] = &models.Group{ID: 1, Name: "A", ModuleAccess: []models.ModuleAccess{dashboard, roles}}
	repo.groups[2] = &models.Group{ID: 2, Name: "B", ModuleAccess: []models.ModuleAccess{dashboard}}

	id := uuid.New()
	users.byID[id] = &models.User{ID: id}
	if err := svc.AssignRoles(context.Background(), id, []uint{1, 2}); err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}

	modules, err := svc.EffectiveModuleAccess(context.Background(), id)
	if err != nil {
		t.Fatalf("EffectiveModuleAccess: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("expected distinct union of 2, got %d", len(modules))
	}
}
