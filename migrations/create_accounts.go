package migrations

import (
	"referral-portal-server/models"
	"referral-portal-server/utils"
)

func MigrateAccounts() {
	utils.DB.AutoMigrate(&models.Account{})
}
