package errors

import (
	"errors"
	"strings"
)

// Custom application errors
var (
	ErrBlankTitle        = errors.New("標題不可為空")      // Title is empty or whitespace only
	ErrInvalidTime       = errors.New("請選擇有效的時間")    // Time is not HH:mm or out of range
	ErrTimeInPast        = errors.New("提醒時間已經過去")    // Time is not after the current instant
	ErrInvalidDate       = errors.New("無效的日期格式")     // Date is not YYYY-MM-DD
	ErrInvalidID         = errors.New("無效的備忘錄編號")    // Path id is not a positive integer
	ErrInvalidRequest    = errors.New("無法解析請求內容")    // Body could not be decoded
	ErrMemoNotFound      = errors.New("找不到備忘錄")      // Memo not found
	ErrDatabaseOperation = errors.New("資料庫操作失敗")     // Generic storage error
	ErrScheduling        = errors.New("提醒排程失敗")      // Alarm collaborator refused the schedule
	ErrPermissionDenied  = errors.New("通知權限未開啟")     // Notifications cannot be shown
	ErrNoMapHandler      = errors.New("找不到可以開啟地圖的應用程式") // No location or no map provider
	ErrControllerClosed  = errors.New("備忘錄服務已關閉")    // Write submitted after shutdown
	ErrInternalServer    = errors.New("內部伺服器錯誤")     // Generic internal error
)

// FieldError ties a validation failure to the input field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationError collects every failing field of one request.
type ValidationError []FieldError

func (v ValidationError) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the field errors so errors.Is matches the sentinels.
func (v ValidationError) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Fields maps field names to their messages.
func (v ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Err.Error()
	}
	return out
}
