package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/saf/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "02092025_create_auth_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Ulb{}, &models.Permission{}, &models.Role{},
					&models.RolePermission{}, &models.User{}, &models.MenuItem{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.MenuItem{}, &models.User{},
					&models.RolePermission{}, &models.Role{}, &models.Permission{}, &models.Ulb{})
			},
		},
		{
			ID: "02092025_create_master_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Master{}, &models.Ward{}, &models.NewWard{}, &models.Apartment{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.Apartment{}, &models.NewWard{}, &models.Ward{}, &models.Master{})
			},
		},
		{
			ID: "04092025_create_saf_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.SafApplication{}, &models.SafFloor{}, &models.SafOwner{},
					&models.LevelRemark{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.LevelRemark{}, &models.SafOwner{},
					&models.SafFloor{}, &models.SafApplication{})
			},
		},
		{
			ID: "11092025_create_verification_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.FieldVerification{}, &models.GeoTag{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.GeoTag{}, &models.FieldVerification{})
			},
		},
		{
			ID: "18092025_create_receipt_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.PaymentReceipt{}, &models.SamMemo{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.SamMemo{}, &models.PaymentReceipt{})
			},
		},
	})
	return m.Migrate()
}
