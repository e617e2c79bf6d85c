package models

type Workgroup struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// UserWorkgroupRole grants a user one role inside one workgroup.
type UserWorkgroupRole struct {
	UserID      uint `gorm:"primaryKey" json:"userId"`
	WorkgroupID uint `gorm:"primaryKey" json:"workgroupId"`
	Role        Role `gorm:"not null" json:"role"`
}
