package certificates

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mona5211005/certificate-system/internal/vision"
)

// DefaultStudentIDLength matches the organization's student number shape.
const DefaultStudentIDLength = 13

// Validator checks review-form fields. Draft rules are loose so an
// incomplete form can still be parked; submit rules are strict because
// promotion is irreversible. Rules run to completion so the caller sees
// every violation in one pass.
type Validator struct {
	StudentIDLength int

	validate *validator.Validate
}

func NewValidator(studentIDLength int) *Validator {
	if studentIDLength <= 0 {
		studentIDLength = DefaultStudentIDLength
	}
	return &Validator{
		StudentIDLength: studentIDLength,
		validate:        validator.New(),
	}
}

// rule pairs a validation tag with the message reported when it fails.
type rule struct {
	value   string
	tag     string
	message string
}

func (v *Validator) CheckDraft(fields vision.Fields) error {
	return v.run([]rule{
		{fields.StudentID, "required", "学生学号不能为空！"},
		{fields.StudentName, "required", "学生姓名不能为空！"},
		{fields.TutorName, "required", "指导教师不能为空！"},
		{fields.AwardTime, "required", "获奖时间不能为空！"},
	})
}

func (v *Validator) CheckSubmit(fields vision.Fields) error {
	return v.run([]rule{
		{fields.StudentID, fmt.Sprintf("number,len=%d", v.StudentIDLength), fmt.Sprintf("学生学号必须为%d位数字！", v.StudentIDLength)},
		{fields.StudentName, "required", "学生姓名不能为空！"},
		{fields.TutorName, "required", "指导教师不能为空！"},
		{fields.AwardTime, "required", "获奖时间不能为空！"},
		{fields.AwardTime, "omitempty,datetime=2006-01-02", "获奖时间格式错误，请使用YYYY-MM-DD！"},
		{fields.AwardCategory, "omitempty,oneof=国家级 省级", "获奖类别无效（可选：国家级、省级）"},
		{fields.AwardLevel, "omitempty,oneof=一等奖 二等奖 三等奖 金奖 银奖 铜奖 优秀奖", "获奖等级无效"},
	})
}

func (v *Validator) run(rules []rule) error {
	var violations []string
	for _, r := range rules {
		if err := v.validate.Var(r.value, r.tag); err != nil {
			violations = append(violations, r.message)
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}
