package models

// Group is a named role that users can be assigned to. Module-access rows are
// referenced, never owned: deleting a group leaves them untouched.
type Group struct {
	ID           uint           `gorm:"primaryKey"`
	Name         string         `gorm:"column:name;not null;uniqueIndex"`
	ModuleAccess []ModuleAccess `gorm:"many2many:group_module_accesses"`
	Permissions  []Permission   `gorm:"many2many:group_permissions"`
}

// Permission is a fine-grained capability grantable to a group.
type Permission struct {
	ID       uint   `gorm:"primaryKey"`
	Codename string `gorm:"column:codename;not null;uniqueIndex"`
	Name     string `gorm:"column:name;not null"`
}
