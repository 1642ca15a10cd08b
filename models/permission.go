package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Permissions checked by the API
const (
	PermSafRead       = "saf:read"
	PermSafVerify     = "saf:verify"
	PermGeotagCapture = "geotag:capture"
	PermReceiptRead   = "receipt:read"
	PermMemoRead      = "memo:read"
	PermMasterRead    = "master:read"
)

// Permission is a "resource:action" grant
type Permission struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Resource    string    `gorm:"size:50;not null" json:"resource"`
	Action      string    `gorm:"size:50;not null" json:"action"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Role is a workflow role such as "ULB TC" or "Agency TC"
type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string       `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string       `gorm:"size:255" json:"description"`
	IsActive    bool         `gorm:"default:true" json:"isActive"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type RolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time
}

func (p *Permission) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

func (r *Role) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}

// MenuItem is one node of the app's navigation tree. Permission "" means
// every authenticated user sees it.
type MenuItem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParentID   *uuid.UUID `gorm:"type:uuid;index" json:"parentId"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	URL        string     `gorm:"size:255" json:"url"`
	Icon       string     `gorm:"size:50" json:"icon"`
	Permission string     `gorm:"size:100" json:"permission"`
	SortOrder  int        `json:"sortOrder"`
	Children   []MenuItem `gorm:"-" json:"children,omitempty"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
