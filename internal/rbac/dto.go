package rbac

import "github.com/markethive/accounts-backend/pkg/db/models"

// ModuleAccessDTO is the transport shape of a frontend module row.
type ModuleAccessDTO struct {
	ID   uint   `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// PermissionDTO is the transport shape of a grantable capability.
type PermissionDTO struct {
	ID       uint   `json:"id"`
	Codename string `json:"codename"`
	Name     string `json:"name"`
}

// GroupDTO is the transport shape of a role with its grants expanded.
type GroupDTO struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	ModuleAccess []ModuleAccessDTO `json:"module_access"`
	Permissions  []PermissionDTO   `json:"permissions"`
}

// GroupInput carries the fields accepted when creating or updating a role.
type GroupInput struct {
	Name            string `json:"name" validate:"required"`
	ModuleAccessIDs []uint `json:"module_access_ids"`
	PermissionIDs   []uint `json:"permission_ids"`
}

func moduleAccessFromModel(m models.ModuleAccess) ModuleAccessDTO {
	return ModuleAccessDTO{ID: m.ID, URL: m.URL, Name: m.Name}
}

func permissionFromModel(p models.Permission) PermissionDTO {
	return PermissionDTO{ID: p.ID, Codename: p.Codename, Name: p.Name}
}

func groupFromModel(g *models.Group) *GroupDTO {
	if g == nil {
		return nil
	}
	dto := &GroupDTO{
		ID:           g.ID,
		Name:         g.Name,
		ModuleAccess: make([]ModuleAccessDTO, 0, len(g.ModuleAccess)),
		Permissions:  make([]PermissionDTO, 0, len(g.Permissions)),
	}
	for _, m := range g.ModuleAccess {
		dto.ModuleAccess = append(dto.ModuleAccess, moduleAccessFromModel(m))
	}
	for _, p := range g.Permissions {
		dto.Permissions = append(dto.Permissions, permissionFromModel(p))
	}
	return dto
}
