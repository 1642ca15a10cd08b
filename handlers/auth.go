package handlers

import (
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/saf/config"
	"p9e.in/saf/middleware"
	"p9e.in/saf/models"
	"p9e.in/saf/utils"
)

type loginRequest struct {
	Phone    string `json:"phone" validate:"required,min=10,max=15"`
	Password string `json:"password" validate:"required"`
}

// UserDetails is what the app keeps about the signed in user
type UserDetails struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Role        string   `json:"role"`
	UlbID       string   `json:"ulbId,omitempty"`
	Permissions []string `json:"permissions"`
}

func userDetails(u models.User) UserDetails {
	d := UserDetails{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.RoleName(),
		Permissions: u.GetAllPermissions(),
	}
	if u.UlbID != nil {
		d.UlbID = u.UlbID.String()
	}
	return d
}

func menuFor(u *models.User) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := config.DB.Order("sort_order").Find(&items).Error; err != nil {
		return nil, err
	}
	return models.BuildMenuTree(items, u), nil
}

// Login godoc
// @Summary      Sign in with phone and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Router       /api/login [post]
func Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	err := config.DB.Preload("RoleModel.Permissions").Where("phone = ?", req.Phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusUnauthorized, "invalid phone or password")
		return
	}
	if err != nil {
		writeDBError(w, "user", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		log.Printf("[AUTH] failed login for phone=%s ip=%s", req.Phone, middleware.ClientIP(r))
		utils.WriteError(w, http.StatusUnauthorized, "invalid phone or password")
		return
	}
	if !user.IsActive {
		utils.WriteError(w, http.StatusForbidden, "account is inactive")
		return
	}

	token, err := middleware.GenerateToken(user.ID.String(), user.RoleName(), user.Name, user.Phone)
	if err != nil {
		log.Printf("[AUTH] sign token: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "could not generate token")
		return
	}
	menu, err := menuFor(&user)
	if err != nil {
		writeDBError(w, "menu", err)
		return
	}

	log.Printf("[AUTH] login user=%s role=%s", user.ID, user.RoleName())
	utils.WriteSuccess(w, http.StatusOK, "login successful", map[string]any{
		"token":       token,
		"userDetails": userDetails(user),
		"menuTree":    menu,
	})
}

// Logout revokes the bearer token
func Logout(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RevokeToken(r.Context(), middleware.GetClaims(r)); err != nil {
		log.Printf("[AUTH] revoke token: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "could not log out")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "logged out", nil)
}

// Menu returns the navigation tree of the signed in user
func Menu(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	menu, err := menuFor(&user)
	if err != nil {
		writeDBError(w, "menu", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", menu)
}

// WorkflowPermission tells the app which SAF actions the user's role may take
func WorkflowPermission(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	utils.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"role":           user.RoleName(),
		"permissions":    user.GetAllPermissions(),
		"canView":        user.HasPermission(models.PermSafRead),
		"canVerify":      user.HasPermission(models.PermSafVerify),
		"canGeoTag":      user.HasPermission(models.PermGeotagCapture),
		"canViewReceipt": user.HasPermission(models.PermReceiptRead),
		"canViewMemo":    user.HasPermission(models.PermMemoRead),
	})
}
