package usage

import (
	"time"

	"github.com/gofrs/uuid"
)

// DayLayout is the storage format of Counter.UsageDate.
const DayLayout = "2006-01-02"

// Counter تعداد تولید کوت/ریپلای یک کاربر در یک روز (UTC)
type Counter struct {
	UserID                 uuid.UUID `gorm:"primaryKey;type:char(36)"`
	UsageDate              string    `gorm:"primaryKey;type:varchar(10)"`
	QuoteRTGenerationCount int       `gorm:"not null;default:0"`
	CreatedAt              time.Time `gorm:"autoCreateTime"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime"`
}

func (Counter) TableName() string { return "usage_counters" }

// Day returns the UTC calendar day of t in DayLayout.
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// Quota is the outcome of a quota check. Unlimited quotas report -1 for
// Remaining and Limit.
type Quota struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
	Unlimited bool `json:"unlimited"`
}
