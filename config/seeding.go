package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/verification"
)

// RunAllSeeding creates the reference data the service needs. Every step
// skips rows that already exist.
func RunAllSeeding(db *gorm.DB, demo bool) error {
	log.Println("=== Starting Database Seeding ===")

	steps := []struct {
		name string
		run  func(*gorm.DB) error
	}{
		{"Permissions and Roles", SeedPermissions},
		{"Menu", SeedMenu},
		{"Masters", SeedMasters},
		{"ULB", SeedUlb},
		{"Default Users", SeedUsers},
	}
	if demo {
		steps = append(steps, struct {
			name string
			run  func(*gorm.DB) error
		}{"Demo SAF", SeedDemoSaf})
	}

	for i, step := range steps {
		log.Printf("[%d/%d] Seeding %s...", i+1, len(steps), step.name)
		if err := step.run(db); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}

	log.Println("=== Database Seeding Complete ===")
	return nil
}

// RolePermissions is the grant table of the built-in roles
var RolePermissions = map[string][]string{
	models.SuperAdminRole: {"*:*:*"},
	"ULB TC": {
		models.PermSafRead, models.PermSafVerify, models.PermMasterRead,
		models.PermReceiptRead, models.PermMemoRead,
	},
	"Agency TC": {"saf:*", models.PermGeotagCapture, "*:read"},
	"Section Incharge": {models.PermSafRead, "*:read"},
}

// SeedPermissions creates the permissions and the built-in roles
func SeedPermissions(db *gorm.DB) error {
	names := map[string]bool{}
	for _, perms := range RolePermissions {
		for _, p := range perms {
			names[p] = true
		}
	}
	byName := map[string]models.Permission{}
	for name := range names {
		resource, action := splitPermission(name)
		p := models.Permission{Name: name, Resource: resource, Action: action}
		if err := db.Where(models.Permission{Name: name}).FirstOrCreate(&p).Error; err != nil {
			return err
		}
		byName[name] = p
	}

	for roleName, perms := range RolePermissions {
		role := models.Role{Name: roleName, Description: roleName + " role", IsActive: true}
		if err := db.Where(models.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
		grants := make([]models.Permission, 0, len(perms))
		for _, p := range perms {
			grants = append(grants, byName[p])
		}
		if err := db.Model(&role).Association("Permissions").Replace(grants); err != nil {
			return err
		}
	}
	return nil
}

func splitPermission(name string) (string, string) {
	parts := strings.SplitN(name, ":", 3)
	if len(parts) < 2 {
		return name, "*"
	}
	return parts[0], parts[1]
}

// SeedMenu creates the navigation tree once
func SeedMenu(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	type node struct {
		item     models.MenuItem
		children []models.MenuItem
	}
	tree := []node{
		{item: models.MenuItem{Name: "Home", URL: "/home", Icon: "home", SortOrder: 1}},
		{item: models.MenuItem{Name: "Property", Icon: "building", SortOrder: 2}, children: []models.MenuItem{
			{Name: "SAF Inbox", URL: "/saf/inbox", Permission: models.PermSafRead, SortOrder: 1},
			{Name: "Search SAF", URL: "/saf/search", Permission: models.PermSafRead, SortOrder: 2},
			{Name: "Field Verification", URL: "/saf/field-verification", Permission: models.PermSafVerify, SortOrder: 3},
			{Name: "Geo Tagging", URL: "/saf/geotag", Permission: models.PermGeotagCapture, SortOrder: 4},
		}},
		{item: models.MenuItem{Name: "Reports", Icon: "file", SortOrder: 3}, children: []models.MenuItem{
			{Name: "Payment Receipt", URL: "/saf/payment-receipt", Permission: models.PermReceiptRead, SortOrder: 1},
			{Name: "SAM Memo", URL: "/saf/sam-memo", Permission: models.PermMemoRead, SortOrder: 2},
		}},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, n := range tree {
			parent := n.item
			if err := tx.Create(&parent).Error; err != nil {
				return err
			}
			for _, c := range n.children {
				c.ParentID = &parent.ID
				if err := tx.Create(&c).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// SeedMasters creates the enumerations, wards and apartments
func SeedMasters(db *gorm.DB) error {
	masters := map[string][]string{
		models.MasterZone:             {"Zone 1", "Zone 2"},
		models.MasterPropertyType:     {"Super Structure", "Independent Building", "Flats / Unit in Multi Storied Building", "Vacant Land", "Occupied Property"},
		models.MasterUsageType:        {"Residential", "Commercial", "Industrial", "Government", "Religious"},
		models.MasterOccupancyType:    {"Self Occupied", "Tenanted"},
		models.MasterConstructionType: {"Pucca with RCC Roof", "Pucca with Asbestos/Corrugated Sheet", "Kuccha"},
		models.MasterFloor:            {"Basement", "Ground Floor", "1st Floor", "2nd Floor", "3rd Floor"},
		models.MasterRelation:         {"S/O", "D/O", "W/O", "C/O"},
	}
	for category, labels := range masters {
		for i, label := range labels {
			m := models.Master{Category: category, ID: int64(i + 1), Label: label, SortOrder: i + 1, IsActive: true}
			if err := db.Where(models.Master{Category: category, ID: m.ID}).FirstOrCreate(&m).Error; err != nil {
				return err
			}
		}
	}

	wards := []models.Ward{
		{ID: 1, WardNo: "1", Boundary: datatypes.JSON(`{"type":"Polygon","coordinates":[[[85.30,23.33],[85.33,23.33],[85.33,23.36],[85.30,23.36],[85.30,23.33]]]}`)},
		{ID: 2, WardNo: "2"},
		{ID: 3, WardNo: "3"},
	}
	for _, w := range wards {
		w := w
		if err := db.Where(models.Ward{ID: w.ID}).FirstOrCreate(&w).Error; err != nil {
			return err
		}
	}
	newWards := []models.NewWard{
		{ID: 1, WardNo: "1A", OldWardID: 1},
		{ID: 2, WardNo: "1B", OldWardID: 1},
		{ID: 3, WardNo: "2", OldWardID: 2},
		{ID: 4, WardNo: "3", OldWardID: 3},
	}
	for _, w := range newWards {
		w := w
		if err := db.Where(models.NewWard{ID: w.ID}).FirstOrCreate(&w).Error; err != nil {
			return err
		}
	}
	apartments := []models.Apartment{
		{ID: 1, Name: "Green Residency", Address: "Main Road", OldWardID: 1},
		{ID: 2, Name: "Lake View Apartment", Address: "Kanke Road", OldWardID: 2},
	}
	for _, a := range apartments {
		a := a
		if err := db.Where(models.Apartment{ID: a.ID}).FirstOrCreate(&a).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedUlb creates the default ULB
func SeedUlb(db *gorm.DB) error {
	ulb := models.Ulb{
		Name:      "Ranchi Municipal Corporation",
		NameHindi: "राँची नगर निगम",
		Address:   "Kachahari Road, Ranchi",
		TollFree:  "1800-570-1235",
		Website:   "https://www.ranchimunicipal.com",
	}
	return db.Where(models.Ulb{Name: ulb.Name}).FirstOrCreate(&ulb).Error
}

// SeedUsers creates one user per built-in role. The password comes from
// SEED_PASSWORD and should be changed on first login.
func SeedUsers(db *gorm.DB) error {
	password := getEnv("SEED_PASSWORD", "Welcome@123")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var ulb models.Ulb
	if err := db.First(&ulb).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	users := []struct {
		name, email, phone, role string
	}{
		{"Super Admin", "admin@saf.local", "9999999999", models.SuperAdminRole},
		{"ULB Tax Collector", "ulbtc@saf.local", "9999999901", "ULB TC"},
		{"Agency Tax Collector", "agencytc@saf.local", "9999999902", "Agency TC"},
	}
	for _, u := range users {
		var role models.Role
		if err := db.Where("name = ?", u.role).First(&role).Error; err != nil {
			return fmt.Errorf("role %s: %w", u.role, err)
		}
		user := models.User{
			Name:         u.name,
			Email:        u.email,
			Phone:        u.phone,
			PasswordHash: string(hash),
			RoleID:       &role.ID,
			IsActive:     true,
		}
		if ulb.ID != uuid.Nil {
			user.UlbID = &ulb.ID
		}
		if err := db.Where(models.User{Phone: u.phone}).FirstOrCreate(&user).Error; err != nil {
			return err
		}
	}
	if os.Getenv("SEED_PASSWORD") == "" {
		log.Println("[SEED] users created with the default password")
	}
	return nil
}

// SeedDemoSaf creates one pending SAF with a submitted verification,
// receipt and memo so every screen has data
func SeedDemoSaf(db *gorm.DB) error {
	var existing models.SafApplication
	err := db.Where("saf_no = ?", "SAF/DEMO/0001").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var ulb models.Ulb
	db.First(&ulb)

	now := time.Now()
	saf := models.SafApplication{
		SafNo:          "SAF/DEMO/0001",
		HoldingNo:      "050110000000001",
		AssessmentType: "New Assessment",
		ApplyDate:      models.JSONTime(now.AddDate(0, -1, 0)),
		PropAddress:    "12 Station Road, Ranchi",
		WardMstrID:     1,
		NewWardMstrID:  1,
		ZoneMstrID:     1,
		PropTypeMstrID: 2,
		AreaOfPlot:     2.5,
		CurrentRole:    "ULB TC",
		Status:         "pending",
		Floors: []models.SafFloor{
			{FloorName: "Ground Floor", UsageTypeMasterID: 1, OccupancyTypeMasterID: 1, ConstructionTypeMasterID: 1, BuiltupArea: 1200, CarpetArea: 960, DateFrom: "2016-04", SortOrder: 1},
			{FloorName: "1st Floor", UsageTypeMasterID: 2, OccupancyTypeMasterID: 2, ConstructionTypeMasterID: 1, BuiltupArea: 900, CarpetArea: 720, DateFrom: "2019-04", SortOrder: 2},
		},
		Owners: []models.SafOwner{
			{OwnerName: "Ravi Kumar", GuardianName: "Mohan Kumar", RelationType: "S/O", MobileNo: "9876543210", SortOrder: 1},
		},
		LevelRemarks: []models.LevelRemark{
			{RoleCode: "BO", RoleName: "Back Office", Message: "Documents verified", Action: "forward", ReceivingDate: models.JSONTime(now.AddDate(0, 0, -10))},
		},
	}
	if ulb.ID != uuid.Nil {
		saf.UlbID = &ulb.ID
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&saf).Error; err != nil {
			return err
		}
		if err := tx.Create(demoVerification(saf, now)).Error; err != nil {
			return err
		}
		receipt := models.PaymentReceipt{
			SafID:         saf.ID,
			TranNo:        "TRN/DEMO/0001",
			TranDate:      models.JSONTime(now.AddDate(0, 0, -20)),
			PaymentMode:   "CASH",
			FromFy:        "2016-2017",
			FromQtr:       1,
			UptoFy:        "2025-2026",
			UptoQtr:       4,
			HoldingTax:    4800,
			EducationCess: 240,
			HealthCess:    240,
			FineRebates:   datatypes.JSON(`[{"headName":"Late Assessment Penalty","amount":100},{"headName":"Rebate","amount":0}]`),
			TotalAmount:   5380,
			ReceivedBy:    "Counter 1",
		}
		if err := tx.Create(&receipt).Error; err != nil {
			return err
		}
		memo := models.SamMemo{
			SafID:         saf.ID,
			MemoNo:        "SAM/DEMO/0001",
			MemoDate:      models.JSONTime(now.AddDate(0, 0, -19)),
			FromFy:        "2016-2017",
			FromQtr:       1,
			Arv:           12000,
			HoldingTax:    180,
			WaterTax:      15,
			LatrineTax:    10,
			RwhPenalty:    90,
			EducationCess: 5,
			HealthCess:    5,
			QuarterlyTax:  305,
		}
		return tx.Create(&memo).Error
	})
}

// demoVerification confirms most declared values and corrects the zone and
// the usage of the first floor
func demoVerification(saf models.SafApplication, now time.Time) *models.FieldVerification {
	rec := verification.VerifiedRecord{
		WardMstrID:          verification.Confirmed(saf.WardMstrID),
		NewWardMstrID:       verification.Confirmed(saf.NewWardMstrID),
		ZoneMstrID:          verification.Corrected(saf.ZoneMstrID, 2),
		PropTypeMstrID:      verification.Confirmed(saf.PropTypeMstrID),
		IsMobileTower:       verification.Confirmed("no"),
		IsHoardingBoard:     verification.Confirmed("no"),
		IsPetrolPump:        verification.Confirmed("no"),
		IsWaterHarvesting:   verification.Corrected("no", "yes"),
		WaterHarvestingDate: verification.Corrected("", "2020-06-01"),
		Owners:              saf.Declared().Owners,
	}
	for i, f := range saf.Floors {
		usage := verification.Confirmed(f.UsageTypeMasterID)
		if i == 1 {
			usage = verification.Corrected(f.UsageTypeMasterID, 1)
		}
		rec.Floors = append(rec.Floors, verification.VerifiedFloor{
			Key:                      f.ID.String(),
			FloorName:                f.FloorName,
			UsageTypeMasterID:        usage,
			OccupancyTypeMasterID:    verification.Confirmed(f.OccupancyTypeMasterID),
			ConstructionTypeMasterID: verification.Confirmed(f.ConstructionTypeMasterID),
			BuiltupArea:              verification.Confirmed(f.BuiltupArea),
			CarpetArea:               verification.Confirmed(f.CarpetArea),
			DateFrom:                 verification.Confirmed(f.DateFrom),
			DateUpto:                 verification.Confirmed(f.DateUpto),
		})
	}
	record, _ := json.Marshal(rec)
	extra, _ := json.Marshal([]verification.FloorRecord{{
		FloorName:                "2nd Floor",
		UsageTypeMasterID:        1,
		OccupancyTypeMasterID:    1,
		ConstructionTypeMasterID: 3,
		BuiltupArea:              400,
		CarpetArea:               320,
		DateFrom:                 "2023-01",
	}})
	return &models.FieldVerification{
		SafID:            saf.ID,
		VerifiedBy:       "Agency TC",
		UserName:         "Agency Tax Collector",
		VerificationDate: models.JSONTime(now.AddDate(0, 0, -5)),
		Remarks:          "Rainwater harvesting found on site",
		Record:           datatypes.JSON(record),
		ExtraFloors:      datatypes.JSON(extra),
	}
}
