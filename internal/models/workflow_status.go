package models

import "fmt"

type WorkflowStatus string

const (
	StatusDraft     WorkflowStatus = "draft"
	StatusInReview  WorkflowStatus = "in_review"
	StatusReviewed  WorkflowStatus = "reviewed"
	StatusPublished WorkflowStatus = "published"
)

var statusOrder = [...]WorkflowStatus{
	StatusDraft,
	StatusInReview,
	StatusReviewed,
	StatusPublished,
}

// Index returns the position of s on the linear review path, or -1.
func (s WorkflowStatus) Index() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

func (s WorkflowStatus) Valid() bool {
	return s.Index() >= 0
}

// Next returns the adjacent forward status; ok is false for Published.
func (s WorkflowStatus) Next() (next WorkflowStatus, ok bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(statusOrder) {
		return "", false
	}
	return statusOrder[i+1], true
}

func ParseWorkflowStatus(value string) (WorkflowStatus, error) {
	s := WorkflowStatus(value)
	if !s.Valid() {
		return "", fmt.Errorf("unknown workflow status %q", value)
	}
	return s, nil
}

// Tab selects one of the two checklists of a workflow.
type Tab string

const (
	TabReviewed  Tab = "reviewed"
	TabPublished Tab = "published"
)

func ParseTab(value string) (Tab, error) {
	switch Tab(value) {
	case TabReviewed, TabPublished:
		return Tab(value), nil
	}
	return "", fmt.Errorf("unknown tab %q", value)
}
