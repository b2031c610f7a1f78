package dto

import (
	"errors"
	"memocal/internal/domain/constant"
	"memocal/internal/domain/entity"
	"memocal/internal/pkg/dateutil"
	appErrors "memocal/internal/pkg/errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, _, ok := dateutil.ParseClock(fl.Field().String())
		return ok
	})
	return v
}

// fieldErrors maps validation tags to the application errors reported for them.
var fieldErrors = map[string]error{
	"title": appErrors.ErrBlankTitle,
	"time":  appErrors.ErrInvalidTime,
}

// AddMemoRequest is the DTO for creating a memo for the viewed date.
type AddMemoRequest struct {
	Time     string  `json:"time" validate:"clock"`
	Title    string  `json:"title" validate:"nonblank"`
	Location *string `json:"location,omitempty"`
}

// Validate checks the title and the HH:mm grammar of the time.
// It returns an appErrors.ValidationError naming every failing field.
func (r AddMemoRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(appErrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		cause, ok := fieldErrors[fe.Field()]
		if !ok {
			cause = appErrors.ErrInternalServer
		}
		out = append(out, appErrors.FieldError{Field: fe.Field(), Err: cause})
	}
	return out
}

// MemoResponse is the DTO for sending memo information to the client.
type MemoResponse struct {
	ID       uint    `json:"id"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Title    string  `json:"title"`
	Location *string `json:"location,omitempty"`
}

// ToMemoResponse converts an entity.Memo to a MemoResponse DTO in loc.
func ToMemoResponse(m *entity.Memo, loc *time.Location) MemoResponse {
	return MemoResponse{
		ID:       m.ID,
		Date:     dateutil.FromEpoch(m.Date, loc).Format(time.DateOnly),
		Time:     m.Time,
		Title:    m.Title,
		Location: m.Location,
	}
}

// ToMemoResponseList converts a slice of entity.Memo to a slice of MemoResponse DTOs.
func ToMemoResponseList(memos []*entity.Memo, loc *time.Location) []MemoResponse {
	list := make([]MemoResponse, len(memos))
	for i, m := range memos {
		list[i] = ToMemoResponse(m, loc)
	}
	return list
}

// AddMemoResult reports the stored memo and what happened to its reminder.
type AddMemoResult struct {
	Memo     *entity.Memo
	Reminder constant.ReminderStatus
	// Warning is set when the memo was stored but its reminder could not be scheduled.
	Warning error
}

// AddMemoResponse is the DTO returned after creating a memo.
type AddMemoResponse struct {
	Memo     MemoResponse `json:"memo"`
	Reminder string       `json:"reminder"`
	Warning  string       `json:"warning,omitempty"`
}

// ToAddMemoResponse converts an AddMemoResult to its DTO.
func ToAddMemoResponse(r *AddMemoResult, loc *time.Location) AddMemoResponse {
	resp := AddMemoResponse{
		Memo:     ToMemoResponse(r.Memo, loc),
		Reminder: r.Reminder.String(),
	}
	if r.Warning != nil {
		resp.Warning = r.Warning.Error()
	}
	return resp
}

// ViewedDateResponse is the DTO describing the controller's viewed date.
type ViewedDateResponse struct {
	Date    string `json:"date"`
	Heading string `json:"heading"`
}

// SetViewedDateRequest is the DTO for changing the viewed date.
type SetViewedDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// Validate checks the date format.
func (r SetViewedDateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return appErrors.ValidationError{{Field: "date", Err: appErrors.ErrInvalidDate}}
	}
	return nil
}

// PermissionResponse is the DTO describing notification permission.
type PermissionResponse struct {
	Granted bool `json:"granted"`
}

// ErrorResponse is the DTO for a failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
