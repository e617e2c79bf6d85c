package models

// WorkflowStatusField names one data tab of a borehole. FieldUnknown is the
// zero value and never addresses a stored flag.
type WorkflowStatusField int

const (
	FieldUnknown WorkflowStatusField = iota
	FieldLocation
	FieldSection
	FieldGeometry
	FieldLithology
	FieldChronostratigraphy
	FieldLithostratigraphy
	FieldCasing
	FieldInstrumentation
	FieldBackfill
	FieldWaterIngress
	FieldGroundwaterLevelMeasurement
	FieldFieldMeasurement
	FieldHydrotest
	FieldProfiles
	FieldPhotos
	FieldDocuments
)

var fieldNames = [...]string{
	FieldUnknown:                     "Unknown",
	FieldLocation:                    "Location",
	FieldSection:                     "Section",
	FieldGeometry:                    "Geometry",
	FieldLithology:                   "Lithology",
	FieldChronostratigraphy:          "Chronostratigraphy",
	FieldLithostratigraphy:           "Lithostratigraphy",
	FieldCasing:                      "Casing",
	FieldInstrumentation:             "Instrumentation",
	FieldBackfill:                    "Backfill",
	FieldWaterIngress:                "WaterIngress",
	FieldGroundwaterLevelMeasurement: "GroundwaterLevelMeasurement",
	FieldFieldMeasurement:            "FieldMeasurement",
	FieldHydrotest:                   "Hydrotest",
	FieldProfiles:                    "Profiles",
	FieldPhotos:                      "Photos",
	FieldDocuments:                   "Documents",
}

// TabFields lists every addressable field in declaration order.
var TabFields = func() []WorkflowStatusField {
	out := make([]WorkflowStatusField, 0, len(fieldNames)-1)
	for f := FieldLocation; int(f) < len(fieldNames); f++ {
		out = append(out, f)
	}
	return out
}()

func (f WorkflowStatusField) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fieldNames[FieldUnknown]
	}
	return fieldNames[f]
}

// LookupWorkflowStatusField maps a case-sensitive member name to its field.
// "Unknown" and unlisted names return FieldUnknown, false.
func LookupWorkflowStatusField(name string) (WorkflowStatusField, bool) {
	for _, f := range TabFields {
		if fieldNames[f] == name {
			return f, true
		}
	}
	return FieldUnknown, false
}

// TabStatus holds one completeness flag per data tab. It is embedded twice
// into Workflow, so it carries no identity of its own.
type TabStatus struct {
	Location                    bool `gorm:"not null;default:false"`
	Section                     bool `gorm:"not null;default:false"`
	Geometry                    bool `gorm:"not null;default:false"`
	Lithology                   bool `gorm:"not null;default:false"`
	Chronostratigraphy          bool `gorm:"not null;default:false"`
	Lithostratigraphy           bool `gorm:"not null;default:false"`
	Casing                      bool `gorm:"not null;default:false"`
	Instrumentation             bool `gorm:"not null;default:false"`
	Backfill                    bool `gorm:"not null;default:false"`
	WaterIngress                bool `gorm:"not null;default:false"`
	GroundwaterLevelMeasurement bool `gorm:"not null;default:false"`
	FieldMeasurement            bool `gorm:"not null;default:false"`
	Hydrotest                   bool `gorm:"not null;default:false"`
	Profiles                    bool `gorm:"not null;default:false"`
	Photos                      bool `gorm:"not null;default:false"`
	Documents                   bool `gorm:"not null;default:false"`
}

func (t *TabStatus) flag(f WorkflowStatusField) *bool {
	switch f {
	case FieldLocation:
		return &t.Location
	case FieldSection:
		return &t.Section
	case FieldGeometry:
		return &t.Geometry
	case FieldLithology:
		return &t.Lithology
	case FieldChronostratigraphy:
		return &t.Chronostratigraphy
	case FieldLithostratigraphy:
		return &t.Lithostratigraphy
	case FieldCasing:
		return &t.Casing
	case FieldInstrumentation:
		return &t.Instrumentation
	case FieldBackfill:
		return &t.Backfill
	case FieldWaterIngress:
		return &t.WaterIngress
	case FieldGroundwaterLevelMeasurement:
		return &t.GroundwaterLevelMeasurement
	case FieldFieldMeasurement:
		return &t.FieldMeasurement
	case FieldHydrotest:
		return &t.Hydrotest
	case FieldProfiles:
		return &t.Profiles
	case FieldPhotos:
		return &t.Photos
	case FieldDocuments:
		return &t.Documents
	}
	return nil
}

// Get reports the flag of f; FieldUnknown is always false.
func (t TabStatus) Get(f WorkflowStatusField) bool {
	if p := t.flag(f); p != nil {
		return *p
	}
	return false
}

// With returns a copy of t with f set to value. FieldUnknown leaves t as is.
func (t TabStatus) With(f WorkflowStatusField, value bool) TabStatus {
	if p := t.flag(f); p != nil {
		*p = value
	}
	return t
}
