package referrals

import (
	"errors"
	"math/rand"
	"strings"

	"gorm.io/gorm"

	"referral-portal-server/models"
)

const (
	codeLength        = 6
	codeCharset       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeIssueAttempts = 5
)

// NormalizeCode uppercases and trims a referral code. Codes are stored
// uppercase, so normalizing on every lookup makes matching case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func randomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeCharset[rand.Intn(len(codeCharset))]
	}
	return string(b)
}

// issueCode produces a referral code held by no existing college. Collisions
// are checked against the store before commit and retried; running past the
// bound fails the signup rather than issuing a duplicate.
func issueCode(tx *gorm.DB) (string, error) {
	for i := 0; i < codeIssueAttempts; i++ {
		code := randomCode()
		var n int64
		if err := tx.Model(&models.Account{}).Where("referral_code = ?", code).Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// insertCollege writes a college row, issuing its referral code. A
// duplicate-key failure here can come from either unique index: the contact
// pre-check cannot see a concurrently committed twin, and two signups can
// race to the same generated code. Recheck the contact to tell the cases
// apart and reissue the code on a collision.
func insertCollege(tx *gorm.DB, acct *models.Account) error {
	for i := 0; i < codeIssueAttempts; i++ {
		if acct.ReferralCode == nil {
			code, err := issueCode(tx)
			if err != nil {
				return err
			}
			acct.ReferralCode = &code
		}
		err := tx.Create(acct).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		if err := ensureContactFree(tx, acct.Contact); err != nil {
			return err
		}
		acct.ReferralCode = nil
	}
	return ErrCodeSpaceExhausted
}

// resolveCode maps a referral code to the owning college account.
func resolveCode(tx *gorm.DB, code string) (*models.Account, error) {
	var college models.Account
	err := tx.Where("kind = ? AND referral_code = ?", models.KindCollege, NormalizeCode(code)).
		First(&college).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownCode
	}
	if err != nil {
		return nil, err
	}
	return &college, nil
}
