package rbac

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/markethive/accounts-backend/internal/repo"
	"github.com/markethive/accounts-backend/pkg/db/models"
)

// Repository persists groups, permissions, and module-access grants.
type Repository struct {
	repo.Base
}

// NewRepository constructs an rbac repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListModuleAccess returns every seeded frontend module.
func (r *Repository) ListModuleAccess(ctx context.Context) ([]models.ModuleAccess, error) {
	var rows []models.ModuleAccess
	if err := r.DB(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPermissions returns every registered capability.
func (r *Repository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var rows []models.Permission
	if err := r.DB(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindModuleAccessByIDs resolves module rows for the given ids.
func (r *Repository) FindModuleAccessByIDs(ctx context.Context, ids []uint) ([]models.ModuleAccess, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.ModuleAccess
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindPermissionsByIDs resolves permission rows for the given ids.
func (r *Repository) FindPermissionsByIDs(ctx context.Context, ids []uint) ([]models.Permission, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Permission
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListGroups returns all groups with their grants preloaded.
func (r *Repository) ListGroups(ctx context.Context) ([]models.Group, error) {
	var rows []models.Group
	if err := r.DB(ctx).
		Preload("ModuleAccess").
		Preload("Permissions").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindGroupByID loads one group with grants preloaded.
func (r *Repository) FindGroupByID(ctx context.Context, id uint) (*models.Group, error) {
	var row models.Group
	if err := r.DB(ctx).
		Preload("ModuleAccess").
		Preload("Permissions").
		First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindGroupsByIDs resolves group rows for the given ids, without grants.
func (r *Repository) FindGroupsByIDs(ctx context.Context, ids []uint) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Group
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateGroup inserts the group together with its association rows.
func (r *Repository) CreateGroup(ctx context.Context, group *models.Group) error {
	return r.DB(ctx).Create(group).Error
}

// UpdateGroup renames the group and replaces both grant sets atomically.
func (r *Repository) UpdateGroup(ctx context.Context, group *models.Group, modules []models.ModuleAccess, permissions []models.Permission) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Group{}).
			Where("id = ?", group.ID).
			UpdateColumn("name", group.Name).Error; err != nil {
			return err
		}
		if err := tx.Model(group).Association("ModuleAccess").Replace(&modules); err != nil {
			return err
		}
		return tx.Model(group).Association("Permissions").Replace(&permissions)
	})
}

// DeleteGroup removes the group; join rows cascade, referenced modules and
// permissions survive.
func (r *Repository) DeleteGroup(ctx context.Context, id uint) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		group := models.Group{ID: id}
		if err := tx.Model(&group).Association("ModuleAccess").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&group).Association("Permissions").Clear(); err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_groups WHERE group_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Group{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ReplaceUserGroups swaps the user's role membership for the provided set.
func (r *Repository) ReplaceUserGroups(ctx context.Context, userID uuid.UUID, groups []models.Group) error {
	return r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{ID: userID}
		return tx.Model(&user).Association("Groups").Replace(&groups)
	})
}

// EffectiveModuleAccess returns the distinct union of module rows granted
// through any of the user's groups.
func (r *Repository) EffectiveModuleAccess(ctx context.Context, userID uuid.UUID) ([]models.ModuleAccess, error) {
	var rows []models.ModuleAccess
	err := r.DB(ctx).
		Table("module_accesses").
		Distinct("module_accesses.*").
		Joins("JOIN group_module_accesses gma ON gma.module_access_id = module_accesses.id").
		Joins("JOIN user_groups ug ON ug.group_id = gma.group_id").
		Where("ug.user_id = ?", userID).
		Order("module_accesses.id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
