package workflow

import "borehole-workflow/internal/models"

// Policy holds the switches the review process leaves to the operator.
type Policy struct {
	// RequireReviewedTabsComplete gates InReview -> Reviewed on a full reviewed checklist.
	RequireReviewedTabsComplete bool
	// RequirePublishedTabsComplete gates Reviewed -> Published on a full published checklist.
	RequirePublishedTabsComplete bool
	// ProtectPublishedTabs makes the published checklist of a published
	// workflow writable only by the publishing role.
	ProtectPublishedTabs bool
	// ValidatorCanPublish lowers the publishing role from Publisher to Validator.
	// When false Validator has the rights of Controller and nothing more.
	ValidatorCanPublish bool
}

func DefaultPolicy() Policy {
	return Policy{
		RequireReviewedTabsComplete:  true,
		RequirePublishedTabsComplete: true,
		ProtectPublishedTabs:         true,
	}
}

// RequiredRole returns the minimum role that may move a workflow into to.
// Draft is the editors' status.
func (p Policy) RequiredRole(to models.WorkflowStatus) models.Role {
	switch to {
	case models.StatusInReview:
		return models.RoleEditor
	case models.StatusReviewed:
		return models.RoleController
	case models.StatusPublished:
		if p.ValidatorCanPublish {
			return models.RoleValidator
		}
		return models.RolePublisher
	}
	return models.RoleEditor
}

// AllowedTransition reports whether role may move a workflow from one status
// to another: one step forward with the role of the target status, or back to
// Draft with the role owning the current status. It does not look at the
// reject flag or the comment, the state machine does.
func (p Policy) AllowedTransition(role models.Role, from, to models.WorkflowStatus) bool {
	switch {
	case isReject(from, to):
		return role >= p.RequiredRole(from)
	case isAdjacent(from, to):
		return role >= p.RequiredRole(to)
	}
	return false
}

// EditRole is the minimum role allowed to write borehole content while the
// workflow sits in status: the role that acts on that status next.
func (p Policy) EditRole(status models.WorkflowStatus) models.Role {
	if next, ok := status.Next(); ok {
		if status == models.StatusDraft {
			return models.RoleEditor
		}
		return p.RequiredRole(next)
	}
	return p.RequiredRole(models.StatusPublished)
}

func isAdjacent(from, to models.WorkflowStatus) bool {
	next, ok := from.Next()
	return ok && next == to
}

func isReject(from, to models.WorkflowStatus) bool {
	return to == models.StatusDraft && from.Valid() && from != models.StatusDraft
}
