package certificates

import (
	"errors"
	"testing"

	"github.com/mona5211005/certificate-system/internal/vision"
)

// strictFields returns a field set that passes every submit rule.
func strictFields() vision.Fields {
	f := vision.DefaultFields()
	f.StudentID = "2025000000001"
	f.StudentName = "张三"
	f.TutorName = "李老师"
	f.AwardTime = "2025-06-01"
	f.AwardCategory = "省级"
	f.AwardLevel = "一等奖"
	return f
}

func violationsOf(t *testing.T, err error) []string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	return verr.Violations
}

func TestCheckDraftRequiresCoreFields(t *testing.T) {
	v := NewValidator(0)

	fields := vision.Fields{StudentName: "张三"}
	err := v.CheckDraft(fields)
	got := violationsOf(t, err)
	want := []string{"学生学号不能为空！", "指导教师不能为空！", "获奖时间不能为空！"}
	if len(got) != len(want) {
		t.Fatalf("violations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("violation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCheckDraftAcceptsPartialForm(t *testing.T) {
	v := NewValidator(0)

	// Drafts only need the four core fields; everything else may stay
	// empty or hold unreviewed extraction output.
	fields := vision.Fields{
		StudentID:   "short",
		StudentName: "张三",
		TutorName:   "李老师",
		AwardTime:   "还没想好",
	}
	if err := v.CheckDraft(fields); err != nil {
		t.Fatalf("CheckDraft: %v", err)
	}
}

func TestCheckSubmitAcceptsStrictForm(t *testing.T) {
	v := NewValidator(0)
	if err := v.CheckSubmit(strictFields()); err != nil {
		t.Fatalf("CheckSubmit: %v", err)
	}
}

func TestCheckSubmitRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*vision.Fields)
		want   string
	}{
		{name: "empty id", mutate: func(f *vision.Fields) { f.StudentID = "" }, want: "学生学号必须为13位数字！"},
		{name: "short id", mutate: func(f *vision.Fields) { f.StudentID = "20250001" }, want: "学生学号必须为13位数字！"},
		{name: "non digit id", mutate: func(f *vision.Fields) { f.StudentID = "20250000000AB" }, want: "学生学号必须为13位数字！"},
		{name: "empty name", mutate: func(f *vision.Fields) { f.StudentName = "" }, want: "学生姓名不能为空！"},
		{name: "empty tutor", mutate: func(f *vision.Fields) { f.TutorName = "" }, want: "指导教师不能为空！"},
		{name: "empty time", mutate: func(f *vision.Fields) { f.AwardTime = "" }, want: "获奖时间不能为空！"},
		{name: "slash date", mutate: func(f *vision.Fields) { f.AwardTime = "2025/06/01" }, want: "获奖时间格式错误，请使用YYYY-MM-DD！"},
		{name: "reversed date", mutate: func(f *vision.Fields) { f.AwardTime = "01-06-2025" }, want: "获奖时间格式错误，请使用YYYY-MM-DD！"},
		{name: "datetime instead of date", mutate: func(f *vision.Fields) { f.AwardTime = "2025-06-01 10:00:00" }, want: "获奖时间格式错误，请使用YYYY-MM-DD！"},
		{name: "unknown category", mutate: func(f *vision.Fields) { f.AwardCategory = "校级" }, want: "获奖类别无效（可选：国家级、省级）"},
		{name: "unknown level", mutate: func(f *vision.Fields) { f.AwardLevel = "特等奖" }, want: "获奖等级无效"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(0)
			fields := strictFields()
			tt.mutate(&fields)
			got := violationsOf(t, v.CheckSubmit(fields))
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("violations = %v, want [%q]", got, tt.want)
			}
		})
	}
}

func TestCheckSubmitCollectsEveryViolation(t *testing.T) {
	v := NewValidator(0)

	fields := vision.Fields{
		StudentID:     "123",
		AwardTime:     "June 2025",
		AwardCategory: "市级",
		AwardLevel:    "参与奖",
	}
	got := violationsOf(t, v.CheckSubmit(fields))
	want := []string{
		"学生学号必须为13位数字！",
		"学生姓名不能为空！",
		"指导教师不能为空！",
		"获奖时间格式错误，请使用YYYY-MM-DD！",
		"获奖类别无效（可选：国家级、省级）",
		"获奖等级无效",
	}
	if len(got) != len(want) {
		t.Fatalf("violations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("violation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCheckSubmitOptionalEnumsMayBeEmpty(t *testing.T) {
	v := NewValidator(0)

	fields := strictFields()
	fields.AwardCategory = ""
	fields.AwardLevel = ""
	if err := v.CheckSubmit(fields); err != nil {
		t.Fatalf("CheckSubmit: %v", err)
	}
}

func TestValidatorHonorsConfiguredIDLength(t *testing.T) {
	v := NewValidator(8)

	fields := strictFields()
	fields.StudentID = "20250001"
	if err := v.CheckSubmit(fields); err != nil {
		t.Fatalf("CheckSubmit with 8-digit id: %v", err)
	}

	fields.StudentID = "2025000000001"
	got := violationsOf(t, v.CheckSubmit(fields))
	if len(got) != 1 || got[0] != "学生学号必须为8位数字！" {
		t.Fatalf("violations = %v, want the 8-digit message", got)
	}
}

func TestValidationErrorJoinsViolations(t *testing.T) {
	err := &ValidationError{Violations: []string{"甲", "乙"}}
	if err.Error() != "字段校验失败：甲；乙" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
