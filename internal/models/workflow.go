package models

import "time"

// Workflow is the current review state of one borehole. Every status change
// of this row is mirrored by exactly one WorkflowChange.
type Workflow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	BoreholeID          uint           `gorm:"uniqueIndex;not null" json:"boreholeId"`
	Status              WorkflowStatus `gorm:"type:varchar(20);not null" json:"status"`
	HasRequestedChanges bool           `gorm:"not null" json:"hasRequestedChanges"`
	AssigneeID          *uint          `json:"assigneeId"`

	ReviewedTabs  TabStatus `gorm:"embedded;embeddedPrefix:reviewed_" json:"reviewedTabs"`
	PublishedTabs TabStatus `gorm:"embedded;embeddedPrefix:published_" json:"publishedTabs"`

	// Version guards the row against lost updates; it grows by one per write.
	Version int `gorm:"not null" json:"version"`
}

// Tabs returns the checklist selected by tab.
func (w Workflow) Tabs(tab Tab) TabStatus {
	if tab == TabPublished {
		return w.PublishedTabs
	}
	return w.ReviewedTabs
}

func (w *Workflow) SetTabs(tab Tab, ts TabStatus) {
	if tab == TabPublished {
		w.PublishedTabs = ts
		return
	}
	w.ReviewedTabs = ts
}
