package entity

import "strings"

// Memo represents one timed note for a calendar day.
type Memo struct {
	ID       uint    `gorm:"primaryKey;autoIncrement"`
	Date     int64   `gorm:"column:date;not null;index:idx_memos_date_time,priority:1"` // Local midnight, epoch milliseconds
	Time     string  `gorm:"column:time;size:5;not null;index:idx_memos_date_time,priority:2"`
	Title    string  `gorm:"column:title;type:text;not null"`
	Location *string `gorm:"column:location;type:text"`
}

// TableName specifies the table name for the Memo entity.
func (Memo) TableName() string {
	return "memos"
}

// HasLocation reports whether the memo carries a non-blank location.
func (m *Memo) HasLocation() bool {
	return m.Location != nil && strings.TrimSpace(*m.Location) != ""
}

// NormalizeLocation trims loc and turns blank input into nil.
func NormalizeLocation(loc *string) *string {
	if loc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*loc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
