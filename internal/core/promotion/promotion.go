package promotion

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

const (
	LinkPlaceholder = "[link]"
	ScorePenalty    = 3
)

// Settings is the per-user promotional suffix configuration.
type Settings struct {
	UserID      uuid.UUID `gorm:"primaryKey;type:char(36)"`
	Enabled     bool      `gorm:"not null;default:false"`
	ProductName string    `gorm:"type:varchar(255)"`
	LinkURL     string    `gorm:"type:varchar(500)"`
	Template    string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Settings) TableName() string { return "promotion_settings" }

type Result struct {
	FullText     string
	ScorePenalty int
}

// Apply appends the rendered promotion suffix to text. Disabled settings or a
// missing link leave the text untouched.
func Apply(text string, s *Settings) Result {
	if s == nil || !s.Enabled || s.LinkURL == "" {
		return Result{FullText: text}
	}
	suffix := strings.TrimSpace(strings.ReplaceAll(s.Template, LinkPlaceholder, s.LinkURL))
	return Result{
		FullText:     text + "\n\n" + suffix,
		ScorePenalty: ScorePenalty,
	}
}

// AdjustScore subtracts penalty from score, floored at zero.
func AdjustScore(score, penalty int) int {
	if score-penalty < 0 {
		return 0
	}
	return score - penalty
}
