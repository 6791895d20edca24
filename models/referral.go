package models

import "time"

// Referral is one edge of the referral graph: a student account attributed to
// the college whose code it presented at signup. Edges are append-only and
// their insertion order is signup order, which is what dashboard listings
// sort by.
type Referral struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReferredID uint      `gorm:"uniqueIndex;not null" json:"referred_id"`
	ReferrerID uint      `gorm:"index;not null" json:"referrer_id"`
	Code       string    `gorm:"not null" json:"code"`
	CreatedAt  time.Time `json:"created_at"`
}
