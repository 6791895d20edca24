// seed/seed.go
package seed

import (
	"context"
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"referral-portal-server/referrals"
)

// SeedDemoCollege creates a demo college account for local development when
// SEED_DEMO_COLLEGE=true. Skipped silently if the account already exists.
func SeedDemoCollege(svc *referrals.Service) error {
	if os.Getenv("SEED_DEMO_COLLEGE") != "true" {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	acct, err := svc.SignupCollege(context.Background(), referrals.CollegeSignup{
		Name:         "Demo Rep",
		Email:        "demo@example.com",
		PasswordHash: string(hashed),
		CollegeName:  "Demo College",
		PhoneNumber:  "0000000000",
	})
	if errors.Is(err, referrals.ErrDuplicateContact) {
		log.Println("Demo college already exists. Skipping seeding.")
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("Demo college seeded with referral code %s.", *acct.ReferralCode)
	return nil
}
