package certificates

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("certificate not found")

	// ErrNotEditable means the target record is already submitted.
	ErrNotEditable = errors.New("submitted certificates cannot be modified")

	// ErrDeadlinePassed blocks every non-admin promotion path once the
	// configured cutoff is behind us.
	ErrDeadlinePassed = errors.New("提交截止时间已过，无法提交")

	// ErrDuplicateRecord means the file already has a certificate record.
	ErrDuplicateRecord = errors.New("该文件已存在证书记录")
)

// ValidationError carries every violated rule at once so the reviewer
// can fix the whole form in a single round trip.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "字段校验失败：" + strings.Join(e.Violations, "；")
}
