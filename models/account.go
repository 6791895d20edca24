package models

import "time"

type AccountKind string

const (
	KindCollege AccountKind = "college"
	KindStudent AccountKind = "student"
)

type EnrollmentState string

const (
	StatePending EnrollmentState = "pending"
	StateEnabled EnrollmentState = "enabled"
	StateRemoved EnrollmentState = "removed"
)

// Account is the single shape shared by both account kinds. College reps and
// students diverge only in which columns they fill in: a college holds a
// referral code and the materialized enabled-student counter, a student holds
// the attribution and enrollment lifecycle fields.
type Account struct {
	ID       uint        `gorm:"primaryKey" json:"id"`
	Kind     AccountKind `gorm:"type:varchar(16);not null;index" json:"kind"`
	Name     string      `gorm:"not null" json:"name"`
	Contact  string      `gorm:"uniqueIndex;not null" json:"contact"` // email (college) or phone (student); login key
	Phone    string      `json:"phone_number,omitempty"`
	Password string      `gorm:"not null" json:"-"`

	// College-only fields. ReferralCode is stored uppercase and never
	// changes once issued; EnabledCount is maintained with atomic SQL
	// increments, never read-modify-write.
	ReferralCode     *string `gorm:"uniqueIndex" json:"referral_code,omitempty"`
	OrganizationName string  `json:"organization_name,omitempty"`
	YearOfGraduation string  `json:"year_of_graduation,omitempty"`
	EnabledCount     int     `gorm:"not null;default:0" json:"-"`

	// Student-only fields. ReferredByCode is set at signup or never.
	ReferredByCode  *string         `gorm:"index" json:"referred_by_code,omitempty"`
	GroupLabel      string          `json:"standard,omitempty"`
	Address         string          `json:"address,omitempty"`
	FeedbackDetails string          `json:"feedback_details,omitempty"`
	State           EnrollmentState `gorm:"type:varchar(16)" json:"state,omitempty"`
	VideoURL        *string         `json:"video_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
