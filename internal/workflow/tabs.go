package workflow

import (
	"sort"

	"borehole-workflow/internal/models"
)

// GetField returns the flag of field in ts.
func GetField(ts models.TabStatus, field models.WorkflowStatusField) bool {
	return ts.Get(field)
}

// ApplyChanges validates every key of changes before touching anything and
// returns the updated copy. The first unknown key fails the whole batch and
// ts is returned unchanged.
func ApplyChanges(ts models.TabStatus, changes map[string]bool) (models.TabStatus, error) {
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	// sorted so that the reported key does not depend on map order
	sort.Strings(names)

	fields := make(map[models.WorkflowStatusField]bool, len(changes))
	for _, name := range names {
		field, ok := models.LookupWorkflowStatusField(name)
		if !ok {
			return ts, &UnknownFieldError{Name: name}
		}
		fields[field] = changes[name]
	}

	out := ts
	for field, value := range fields {
		out = out.With(field, value)
	}
	return out, nil
}

// IsComplete reports whether every tab of ts is checked.
func IsComplete(ts models.TabStatus) bool {
	for _, f := range models.TabFields {
		if !ts.Get(f) {
			return false
		}
	}
	return true
}
