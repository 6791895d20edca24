package migrations

import (
	"referral-portal-server/models"
	"referral-portal-server/utils"
)

func MigrateReferrals() {
	utils.DB.AutoMigrate(&models.Referral{})
}
