package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Master categories
const (
	MasterZone             = "zone"
	MasterPropertyType     = "propertyType"
	MasterUsageType        = "usageType"
	MasterOccupancyType    = "occupancyType"
	MasterConstructionType = "constructionType"
	MasterFloor            = "floor"
	MasterRelation         = "relation"
)

// Ulb is an urban local body issuing receipts and memos
type Ulb struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	NameHindi string    `gorm:"size:150" json:"nameHindi"`
	Address   string    `gorm:"size:255" json:"address"`
	Phone     string    `gorm:"size:20" json:"phone"`
	TollFree  string    `gorm:"size:20" json:"tollFree"`
	Email     string    `gorm:"size:100" json:"email"`
	Website   string    `gorm:"size:100" json:"website"`
	LogoURL   string    `gorm:"size:255" json:"logoUrl"`
}

func (u *Ulb) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// Master is one entry of a simple enumeration. Ids are fixed per category
// because the workflow depends on some of them (see verification.PropertyType*).
type Master struct {
	Category  string `gorm:"primaryKey;size:50" json:"category"`
	ID        int64  `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Label     string `gorm:"size:100;not null" json:"label"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `gorm:"default:true" json:"isActive"`
}

// Ward is an old ward. Boundary holds an optional GeoJSON polygon.
type Ward struct {
	ID       int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	WardNo   string         `gorm:"size:20;not null" json:"wardNo"`
	Boundary datatypes.JSON `json:"boundary,omitempty"`
}

// NewWard is a ward of the current delimitation, mapped from an old ward
type NewWard struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	WardNo    string `gorm:"size:20;not null" json:"wardNo"`
	OldWardID int64  `gorm:"index" json:"oldWardId"`
}

type Apartment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"size:150;not null" json:"apartmentName"`
	Address   string `gorm:"size:255" json:"apartmentAddress"`
	OldWardID int64  `gorm:"index" json:"oldWardId"`
}
