package utils

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/gomail.v2"
)

// SendReferralCodeEmail mails a newly registered college rep their referral
// code. Failures are logged and swallowed; signup never blocks on SMTP.
func SendReferralCodeEmail(email, name, code string) {
	if os.Getenv("SMTP_HOST") == "" {
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_SENDER"))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Your referral code")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour referral code is: %s\n\nShare your signup link with students to climb the leaderboard.",
		name, code,
	))

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		465,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
	)

	if err := d.DialAndSend(m); err != nil {
		log.Printf("Failed to send referral code email to %s: %v", email, err)
		return
	}

	log.Printf("Referral code email sent to %s", email)
}
