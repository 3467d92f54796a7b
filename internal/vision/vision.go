// Package vision extracts the ten certificate fields from a normalized
// image through an external vision-language service. Extraction is an
// assistive prefill for the review form, so every failure path degrades to
// a default-filled result instead of surfacing an error.
package vision

import (
	"strconv"
	"strings"
)

// Fields is the fixed ten-field record the extraction service must return.
// JSON keys match both the prompt contract and the certificate columns.
type Fields struct {
	StudentCollege     string `json:"student_college"`
	CompetitionProject string `json:"competition_project"`
	StudentID          string `json:"student_id"`
	StudentName        string `json:"student_name"`
	AwardCategory      string `json:"award_category"`
	AwardLevel         string `json:"award_level"`
	CompetitionType    string `json:"competition_type"`
	Organizer          string `json:"organizer"`
	AwardTime          string `json:"award_time"`
	TutorName          string `json:"tutor_name"`
}

// Defaults backfilled when the model leaves the classification fields empty.
const (
	DefaultCompetitionType = "学科竞赛"
	DefaultAwardCategory   = "省级"
)

// emptySentinels are model outputs that mean "not found". Values matching
// one of these are treated as empty.
var emptySentinels = map[string]struct{}{
	"无": {}, "空": {}, "-": {}, "": {}, "N/A": {}, "暂无": {},
}

// fieldOrder fixes the key order for the prompt and the missing-field
// warning.
var fieldOrder = []string{
	"student_college", "competition_project", "student_id", "student_name",
	"award_category", "award_level", "competition_type", "organizer",
	"award_time", "tutor_name",
}

func (f *Fields) ref(key string) *string {
	switch key {
	case "student_college":
		return &f.StudentCollege
	case "competition_project":
		return &f.CompetitionProject
	case "student_id":
		return &f.StudentID
	case "student_name":
		return &f.StudentName
	case "award_category":
		return &f.AwardCategory
	case "award_level":
		return &f.AwardLevel
	case "competition_type":
		return &f.CompetitionType
	case "organizer":
		return &f.Organizer
	case "award_time":
		return &f.AwardTime
	case "tutor_name":
		return &f.TutorName
	}
	return nil
}

// Missing lists the keys whose value is empty, in canonical order.
func (f Fields) Missing() []string {
	var missing []string
	for _, key := range fieldOrder {
		if p := f.ref(key); *p == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func (f *Fields) applyDefaults() {
	if f.CompetitionType == "" {
		f.CompetitionType = DefaultCompetitionType
	}
	if f.AwardCategory == "" {
		f.AwardCategory = DefaultAwardCategory
	}
}

// DefaultFields is the record returned when extraction cannot run: every
// field empty except the two backfilled classification defaults.
func DefaultFields() Fields {
	var f Fields
	f.applyDefaults()
	return f
}

// fieldsFromPayload copies the ten known keys out of a decoded model
// payload, trimming whitespace and dropping sentinel-empty values. Unknown
// keys are ignored. Values are coerced to strings because the model
// sometimes returns the student id as a JSON number.
func fieldsFromPayload(payload map[string]any) Fields {
	var f Fields
	for _, key := range fieldOrder {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		value := strings.TrimSpace(stringify(raw))
		if _, sentinel := emptySentinels[value]; sentinel {
			continue
		}
		*f.ref(key) = value
	}
	return f
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}
