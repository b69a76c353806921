package rbac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/pkg/db/models"
	pkgerrors "github.com/markethive/accounts-backend/pkg/errors"
)

// Service manages roles (groups) and resolves effective permissions.
type Service interface {
	ListModules(ctx context.Context) ([]ModuleAccessDTO, error)
	ListPermissions(ctx context.Context) ([]PermissionDTO, error)
	EffectiveModuleAccess(ctx context.Context, userID uuid.UUID) ([]ModuleAccessDTO, error)

	ListGroups(ctx context.Context) ([]GroupDTO, error)
	CreateGroup(ctx context.Context, input GroupInput) (*GroupDTO, error)
	GetGroup(ctx context.Context, id uint) (*GroupDTO, error)
	UpdateGroup(ctx context.Context, id uint, input GroupInput) (*GroupDTO, error)
	DeleteGroup(ctx context.Context, id uint) error

	AssignRoles(ctx context.Context, userID uuid.UUID, roleIDs []uint) error
}

type repository interface {
	ListModuleAccess(ctx context.Context) ([]models.ModuleAccess, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	FindModuleAccessByIDs(ctx context.Context, ids []uint) ([]models.ModuleAccess, error)
	FindPermissionsByIDs(ctx context.Context, ids []uint) ([]models.Permission, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	FindGroupByID(ctx context.Context, id uint) (*models.Group, error)
	FindGroupsByIDs(ctx context.Context, ids []uint) ([]models.Group, error)
	CreateGroup(ctx context.Context, group *models.Group) error
	UpdateGroup(ctx context.Context, group *models.Group, modules []models.ModuleAccess, permissions []models.Permission) error
	DeleteGroup(ctx context.Context, id uint) error
	ReplaceUserGroups(ctx context.Context, userID uuid.UUID, groups []models.Group) error
	EffectiveModuleAccess(ctx context.Context, userID uuid.UUID) ([]models.ModuleAccess, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type activityRecorder interface {
	Record(ctx context.Context, userID *uuid.UUID, action string)
}

type service struct {
	repo     repository
	users    userFinder
	activity activityRecorder
}

// NewService constructs an rbac service.
func NewService(repo repository, users userFinder, activity activityRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rbac repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user finder is required")
	}
	if activity == nil {
		return nil, fmt.Errorf("activity recorder is required")
	}
	return &service{repo: repo, users: users, activity: activity}, nil
}

func (s *service) ListModules(ctx context.Context) ([]ModuleAccessDTO, error) {
	rows, err := s.repo.ListModuleAccess(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list modules")
	}
	out := make([]ModuleAccessDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, moduleAccessFromModel(row))
	}
	return out, nil
}

func (s *service) ListPermissions(ctx context.Context) ([]PermissionDTO, error) {
	rows, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list permissions")
	}
	out := make([]PermissionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, permissionFromModel(row))
	}
	return out, nil
}

func (s *service) EffectiveModuleAccess(ctx context.Context, userID uuid.UUID) ([]ModuleAccessDTO, error) {
	rows, err := s.repo.EffectiveModuleAccess(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve module access")
	}
	out := make([]ModuleAccessDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, moduleAccessFromModel(row))
	}
	return out, nil
}

func (s *service) ListGroups(ctx context.Context) ([]GroupDTO, error) {
	rows, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list groups")
	}
	out := make([]GroupDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *groupFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateGroup(ctx context.Context, input GroupInput) (*GroupDTO, error) {
	name, modules, permissions, err := s.resolveInput(ctx, input)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:         name,
		ModuleAccess: modules,
		Permissions:  permissions,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create group")
	}
	return groupFromModel(group), nil
}

func (s *service) GetGroup(ctx context.Context, id uint) (*GroupDTO, error) {
	group, err := s.findGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	return groupFromModel(group), nil
}

func (s *service) UpdateGroup(ctx context.Context, id uint, input GroupInput) (*GroupDTO, error) {
	if _, err := s.findGroup(ctx, id); err != nil {
		return nil, err
	}
	name, modules, permissions, err := s.resolveInput(ctx, input)
	if err != nil {
		return nil, err
	}

	group := &models.Group{ID: id, Name: name}
	if err := s.repo.UpdateGroup(ctx, group, modules, permissions); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update group")
	}

	updated, err := s.findGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	return groupFromModel(updated), nil
}

func (s *service) DeleteGroup(ctx context.Context, id uint) error {
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete group")
	}
	return nil
}

// AssignRoles replaces the user's role membership. Every id must resolve;
// one unknown id rejects the whole request and leaves membership untouched.
func (s *service) AssignRoles(ctx context.Context, userID uuid.UUID, roleIDs []uint) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if user.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}

	roleIDs = dedupe(roleIDs)
	groups, err := s.repo.FindGroupsByIDs(ctx, roleIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve roles")
	}

	if missing := missingIDs(roleIDs, groups); len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "some roles do not exist").
			WithDetails(map[string]any{"missing_ids": missing})
	}

	if err := s.repo.ReplaceUserGroups(ctx, userID, groups); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign roles")
	}
	s.activity.Record(ctx, &userID, "roles assigned")
	return nil
}

func (s *service) findGroup(ctx context.Context, id uint) (*models.Group, error) {
	group, err := s.repo.FindGroupByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "role not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup group")
	}
	return group, nil
}

func (s *service) resolveInput(ctx context.Context, input GroupInput) (string, []models.ModuleAccess, []models.Permission, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	moduleIDs := dedupe(input.ModuleAccessIDs)
	modules, err := s.repo.FindModuleAccessByIDs(ctx, moduleIDs)
	if err != nil {
		return "", nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve modules")
	}
	if missing := missingModuleIDs(moduleIDs, modules); len(missing) > 0 {
		return "", nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "some modules do not exist").
			WithDetails(map[string]any{"missing_ids": missing})
	}

	permissionIDs := dedupe(input.PermissionIDs)
	permissions, err := s.repo.FindPermissionsByIDs(ctx, permissionIDs)
	if err != nil {
		return "", nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve permissions")
	}
	if missing := missingPermissionIDs(permissionIDs, permissions); len(missing) > 0 {
		return "", nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "some permissions do not exist").
			WithDetails(map[string]any{"missing_ids": missing})
	}

	return name, modules, permissions, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(wanted []uint, groups []models.Group) []uint {
	found := make(map[uint]struct{}, len(groups))
	for _, g := range groups {
		found[g.ID] = struct{}{}
	}
	return subtract(wanted, found)
}

func missingModuleIDs(wanted []uint, rows []models.ModuleAccess) []uint {
	found := make(map[uint]struct{}, len(rows))
	for _, r := range rows {
		found[r.ID] = struct{}{}
	}
	return subtract(wanted, found)
}

func missingPermissionIDs(wanted []uint, rows []models.Permission) []uint {
	found := make(map[uint]struct{}, len(rows))
	for _, r := range rows {
		found[r.ID] = struct{}{}
	}
	return subtract(wanted, found)
}

func subtract(wanted []uint, found map[uint]struct{}) []uint {
	var missing []uint
	for _, id := range wanted {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
