package referrals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"referral-portal-server/models"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeCode("abc123"))
	assert.Equal(t, "ABC123", NormalizeCode("  AbC123 "))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestRandomCodeFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := randomCode()
		assert.Regexp(t, `^[A-Z0-9]{6}$`, code)
		// Normalizing an issued code is the identity.
		assert.Equal(t, code, NormalizeCode(code))
	}
}

func TestResolveCodeUnknown(t *testing.T) {
	svc := newTestService(t)
	_, err := resolveCode(svc.db, "NOPE12")
	require.ErrorIs(t, err, ErrUnknownCode)
}

func TestInsertCollegeReissuesOnCodeCollision(t *testing.T) {
	svc := newTestService(t)
	existing := mustCollege(t, svc, "Alice", "alice@example.com")

	// A pre-set code standing in for one a concurrent signup committed
	// after the issue pre-check: the insert trips the code index, the
	// contact is free, so a fresh code gets issued instead of a bogus
	// duplicate-contact failure.
	taken := *existing.ReferralCode
	acct := &models.Account{
		Kind:             models.KindCollege,
		Name:             "Bob",
		Contact:          "bob@example.com",
		Password:         "hash",
		OrganizationName: "Bob College",
		ReferralCode:     &taken,
	}
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		return insertCollege(tx, acct)
	})
	require.NoError(t, err)
	require.NotNil(t, acct.ReferralCode)
	assert.NotEqual(t, taken, *acct.ReferralCode)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, *acct.ReferralCode)
}

func TestInsertCollegeStillReportsDuplicateContact(t *testing.T) {
	svc := newTestService(t)
	existing := mustCollege(t, svc, "Alice", "alice@example.com")

	// Both indexes would trip; the contact one wins the diagnosis.
	taken := *existing.ReferralCode
	acct := &models.Account{
		Kind:             models.KindCollege,
		Name:             "Alice Again",
		Contact:          existing.Contact,
		Password:         "hash",
		OrganizationName: "Other College",
		ReferralCode:     &taken,
	}
	err := svc.db.Transaction(func(tx *gorm.DB) error {
		return insertCollege(tx, acct)
	})
	assert.ErrorIs(t, err, ErrDuplicateContact)
}
