package models

// ModuleAccess is a navigable frontend permission unit. The set is closed:
// rows are seeded by migration when the frontend grows a new module, never
// created through the API.
type ModuleAccess struct {
	ID   uint   `gorm:"primaryKey"`
	URL  string `gorm:"column:url;not null"`
	Name string `gorm:"column:name;not null"`
}
