package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/saf/pkg/verification"
)

// SafApplication is a citizen's self-assessment form
type SafApplication struct {
	ID                       uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	SafNo                    string        `gorm:"size:50;uniqueIndex;not null" json:"safNo"`
	UlbID                    *uuid.UUID    `gorm:"type:uuid" json:"ulbId"`
	HoldingNo                string        `gorm:"size:50" json:"holdingNo"`
	AssessmentType           string        `gorm:"size:50" json:"assessmentType"`
	ApplyDate                JSONTime      `json:"applyDate"`
	PropAddress              string        `gorm:"size:255" json:"propAddress"`
	WardMstrID               int64         `json:"wardMstrId"`
	NewWardMstrID            int64         `json:"newWardMstrId"`
	ZoneMstrID               int64         `json:"zoneMstrId"`
	PropTypeMstrID           int64         `json:"propTypeMstrId"`
	ApartmentDetailID        int64         `json:"apartmentDetailId"`
	ApartmentName            string        `gorm:"size:150" json:"apartmentName"`
	FlatRegistryDate         string        `gorm:"size:30" json:"flatRegistryDate"`
	AreaOfPlot               float64       `json:"areaOfPlot"`
	IsMobileTower            bool          `json:"isMobileTower"`
	TowerArea                float64       `json:"towerArea"`
	TowerInstallationDate    string        `gorm:"size:30" json:"towerInstallationDate"`
	IsHoardingBoard          bool          `json:"isHoardingBoard"`
	HoardingArea             float64       `json:"hoardingArea"`
	HoardingInstallationDate string        `gorm:"size:30" json:"hoardingInstallationDate"`
	IsPetrolPump             bool          `json:"isPetrolPump"`
	UnderGroundArea          float64       `json:"underGroundArea"`
	PetrolPumpCompletionDate string        `gorm:"size:30" json:"petrolPumpCompletionDate"`
	IsWaterHarvesting        bool          `json:"isWaterHarvesting"`
	WaterHarvestingDate      string        `gorm:"size:30" json:"waterHarvestingDate"`
	CurrentRole              string        `gorm:"size:50;index" json:"currentRole"`
	Status                   string        `gorm:"size:30;default:pending" json:"status"`
	Floors                   []SafFloor    `gorm:"foreignKey:SafID" json:"floors"`
	Owners                   []SafOwner    `gorm:"foreignKey:SafID" json:"owners"`
	LevelRemarks             []LevelRemark `gorm:"foreignKey:SafID" json:"levelRemarks,omitempty"`
	CreatedAt                time.Time     `json:"createdAt"`
	UpdatedAt                time.Time     `json:"updatedAt"`
}

// SafFloor is a declared floor. Its ID is the floor's stable key.
type SafFloor struct {
	ID                       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SafID                    uuid.UUID `gorm:"type:uuid;index;not null" json:"safId"`
	FloorName                string    `gorm:"size:50" json:"floorName"`
	UsageTypeMasterID        int64     `json:"usageTypeMasterId"`
	OccupancyTypeMasterID    int64     `json:"occupancyTypeMasterId"`
	ConstructionTypeMasterID int64     `json:"constructionTypeMasterId"`
	BuiltupArea              float64   `json:"builtupArea"`
	CarpetArea               float64   `json:"carpetArea"`
	DateFrom                 string    `gorm:"size:30" json:"dateFrom"`
	DateUpto                 string    `gorm:"size:30" json:"dateUpto"`
	SortOrder                int       `json:"sortOrder"`
}

type SafOwner struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SafID        uuid.UUID `gorm:"type:uuid;index;not null" json:"safId"`
	OwnerName    string    `gorm:"size:150" json:"ownerName"`
	GuardianName string    `gorm:"size:150" json:"guardianName"`
	RelationType string    `gorm:"size:20" json:"relationType"`
	MobileNo     string    `gorm:"size:15" json:"mobileNo"`
	SortOrder    int       `json:"sortOrder"`
}

func (s *SafApplication) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

func (f *SafFloor) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}

func (o *SafOwner) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}

// Declared converts the application into the record verification compares
// against. Floors and owners must be loaded in their sort order.
func (s *SafApplication) Declared() verification.DeclaredRecord {
	d := verification.DeclaredRecord{
		SafNo:                    s.SafNo,
		WardMstrID:               s.WardMstrID,
		NewWardMstrID:            s.NewWardMstrID,
		ZoneMstrID:               s.ZoneMstrID,
		PropTypeMstrID:           s.PropTypeMstrID,
		ApartmentName:            s.ApartmentName,
		FlatRegistryDate:         s.FlatRegistryDate,
		IsMobileTower:            s.IsMobileTower,
		TowerArea:                s.TowerArea,
		TowerInstallationDate:    s.TowerInstallationDate,
		IsHoardingBoard:          s.IsHoardingBoard,
		HoardingArea:             s.HoardingArea,
		HoardingInstallationDate: s.HoardingInstallationDate,
		IsPetrolPump:             s.IsPetrolPump,
		UnderGroundArea:          s.UnderGroundArea,
		PetrolPumpCompletionDate: s.PetrolPumpCompletionDate,
		IsWaterHarvesting:        s.IsWaterHarvesting,
		WaterHarvestingDate:      s.WaterHarvestingDate,
	}
	for _, f := range s.Floors {
		d.Floors = append(d.Floors, verification.FloorRecord{
			Key:                      f.ID.String(),
			FloorName:                f.FloorName,
			UsageTypeMasterID:        f.UsageTypeMasterID,
			OccupancyTypeMasterID:    f.OccupancyTypeMasterID,
			ConstructionTypeMasterID: f.ConstructionTypeMasterID,
			BuiltupArea:              f.BuiltupArea,
			CarpetArea:               f.CarpetArea,
			DateFrom:                 f.DateFrom,
			DateUpto:                 f.DateUpto,
		})
	}
	for _, o := range s.Owners {
		d.Owners = append(d.Owners, verification.OwnerRecord{
			Key:          o.ID.String(),
			OwnerName:    o.OwnerName,
			GuardianName: o.GuardianName,
			RelationType: o.RelationType,
			MobileNo:     o.MobileNo,
		})
	}
	return d
}

// OrderedChildren preloads floors, owners and remarks in display order
func OrderedChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Floors", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order") }).
		Preload("Owners", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order") }).
		Preload("LevelRemarks", func(tx *gorm.DB) *gorm.DB { return tx.Order("receiving_date") })
}
