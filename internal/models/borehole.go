package models

import "time"

// Borehole keeps only what the review workflow touches: identity, workgroup,
// a little free text and the edit lock. Geological content lives elsewhere.
type Borehole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Remarks     string `gorm:"type:text" json:"remarks"`
	WorkgroupID uint   `gorm:"index;not null" json:"workgroupId"`

	// LockedAt is nil exactly when nobody holds the edit lock.
	LockedAt   *time.Time `json:"lockedAt"`
	LockedByID *uint      `json:"lockedById"`

	Workflow *Workflow `gorm:"foreignKey:BoreholeID" json:"workflow,omitempty"`
}
