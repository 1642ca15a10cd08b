// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/saf/utils"
)

const SuperAdminRole = "super_admin"

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string     `gorm:"size:15;uniqueIndex;not null" json:"phone"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	RoleID       *uuid.UUID `gorm:"type:uuid" json:"roleId"`
	RoleModel    *Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	UlbID        *uuid.UUID `gorm:"type:uuid" json:"ulbId"`
	Ulb          *Ulb       `gorm:"foreignKey:UlbID" json:"ulb,omitempty"`
	IsActive     bool       `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// RoleName is the role the user acts as, "" without one
func (u *User) RoleName() string {
	if u.RoleModel == nil {
		return ""
	}
	return u.RoleModel.Name
}

// GetAllPermissions returns the permission names of the user's role
func (u *User) GetAllPermissions() []string {
	if u.RoleModel == nil {
		return nil
	}
	if u.RoleModel.Name == SuperAdminRole {
		return []string{"*:*:*"}
	}
	perms := make([]string, 0, len(u.RoleModel.Permissions))
	for _, p := range u.RoleModel.Permissions {
		perms = append(perms, p.Name)
	}
	return perms
}

// HasPermission honours wildcard grants such as "saf:*"
func (u *User) HasPermission(required string) bool {
	for _, p := range u.GetAllPermissions() {
		if utils.MatchesPermission(p, required) {
			return true
		}
	}
	return false
}
