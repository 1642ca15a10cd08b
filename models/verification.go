package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"p9e.in/saf/pkg/verification"
)

// FieldVerification is a submitted field verification of a SAF. Record
// holds a verification.VerifiedRecord, ExtraFloors the floors found only on
// site.
type FieldVerification struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SafID            uuid.UUID      `gorm:"type:uuid;index;not null" json:"safId"`
	VerifiedBy       string         `gorm:"size:50" json:"verifiedBy"`
	UserID           *uuid.UUID     `gorm:"type:uuid" json:"userId"`
	UserName         string         `gorm:"size:100" json:"userName"`
	VerificationDate JSONTime       `json:"verificationDate"`
	Remarks          string         `gorm:"size:1000" json:"remarks"`
	Record           datatypes.JSON `json:"record"`
	ExtraFloors      datatypes.JSON `json:"extraFloors"`
	CreatedAt        time.Time      `json:"createdAt"`
}

func (v *FieldVerification) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return
}

// Verified decodes the stored record. Row columns win over the JSON copy.
func (v *FieldVerification) Verified() (verification.VerifiedRecord, []verification.FloorRecord, error) {
	var rec verification.VerifiedRecord
	if len(v.Record) > 0 {
		if err := json.Unmarshal(v.Record, &rec); err != nil {
			return rec, nil, fmt.Errorf("decode verification %s: %w", v.ID, err)
		}
	}
	var extra []verification.FloorRecord
	if len(v.ExtraFloors) > 0 {
		if err := json.Unmarshal(v.ExtraFloors, &extra); err != nil {
			return rec, nil, fmt.Errorf("decode extra floors of %s: %w", v.ID, err)
		}
	}
	rec.VerifiedBy = v.VerifiedBy
	rec.UserName = v.UserName
	rec.Remarks = v.Remarks
	if t := time.Time(v.VerificationDate); !t.IsZero() {
		rec.VerificationDate = t.Format(time.RFC3339)
	}
	return rec, extra, nil
}

// GeoTag is one photographed side of a SAF
type GeoTag struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SafID         uuid.UUID  `gorm:"type:uuid;index;not null" json:"safId"`
	DirectionType string     `gorm:"size:30;not null" json:"directionType"`
	ImagePath     string     `gorm:"size:500" json:"imagePath"`
	ObjectName    string     `gorm:"size:500" json:"-"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	OutsideWard   bool       `json:"outsideWard"`
	CapturedAt    time.Time  `json:"capturedAt"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"createdBy"`
}

func (g *GeoTag) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return
}

// Tag converts the row for the comparison builder
func (g GeoTag) Tag() verification.GeoTag {
	return verification.GeoTag{
		DirectionType: g.DirectionType,
		ImagePath:     g.ImagePath,
		Latitude:      g.Latitude,
		Longitude:     g.Longitude,
	}
}

// LevelRemark is one step of the SAF's workflow timeline
type LevelRemark struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SafID         uuid.UUID `gorm:"type:uuid;index;not null" json:"safId"`
	RoleCode      string    `gorm:"size:50" json:"roleCode"`
	RoleName      string    `gorm:"size:100" json:"roleName"`
	Message       string    `gorm:"size:1000" json:"message"`
	Action        string    `gorm:"size:50" json:"action"`
	ReceivingDate JSONTime  `json:"receivingDate"`
}

func (l *LevelRemark) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
