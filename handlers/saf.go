package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"
	"p9e.in/saf/config"
	"p9e.in/saf/middleware"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/verification"
	"p9e.in/saf/utils"
)

type searchRequest struct {
	pageRequest
	Key    string `json:"key" validate:"max=100"`
	WardID int64  `json:"wardId" validate:"omitempty,min=1"`
}

// SafSummary is one line of the inbox and of search results
type SafSummary struct {
	ID             string `json:"id"`
	SafNo          string `json:"safNo"`
	HoldingNo      string `json:"holdingNo"`
	WardNo         string `json:"wardNo"`
	NewWardNo      string `json:"newWardNo"`
	OwnerName      string `json:"ownerName"`
	GuardianName   string `json:"guardianName"`
	MobileNo       string `json:"mobileNo"`
	PropertyType   string `json:"propertyType"`
	AssessmentType string `json:"assessmentType"`
	ApplyDate      string `json:"applyDate"`
	CurrentRole    string `json:"currentRole"`
	Status         string `json:"status"`
}

// LevelRemarkView is one entry of the workflow timeline
type LevelRemarkView struct {
	RoleCode      string `json:"roleCode"`
	RoleName      string `json:"roleName"`
	ShortRole     string `json:"shortRole"`
	Message       string `json:"message"`
	Action        string `json:"action"`
	ReceivingDate string `json:"receivingDate"`
}

func summarize(s models.SafApplication, m verification.MasterData) SafSummary {
	sum := SafSummary{
		ID:             s.ID.String(),
		SafNo:          s.SafNo,
		HoldingNo:      s.HoldingNo,
		WardNo:         m.Wards.Label(s.WardMstrID),
		NewWardNo:      m.NewWards.Label(s.NewWardMstrID),
		PropertyType:   m.PropertyTypes.Label(s.PropTypeMstrID),
		AssessmentType: s.AssessmentType,
		ApplyDate:      verification.FormatLocalDate(s.ApplyDate.Time()),
		CurrentRole:    s.CurrentRole,
		Status:         s.Status,
	}
	names := make([]string, 0, len(s.Owners))
	guardians := make([]string, 0, len(s.Owners))
	mobiles := make([]string, 0, len(s.Owners))
	for _, o := range s.Owners {
		names = append(names, o.OwnerName)
		guardians = append(guardians, o.GuardianName)
		mobiles = append(mobiles, o.MobileNo)
	}
	sum.OwnerName = strings.Join(names, ", ")
	sum.GuardianName = strings.Join(guardians, ", ")
	sum.MobileNo = strings.Join(mobiles, ", ")
	return sum
}

// ShortRole abbreviates a role code for the timeline badge
func ShortRole(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "NA"
	}
	r := []rune(code)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(string(r))
}

func remarkViews(remarks []models.LevelRemark) []LevelRemarkView {
	out := make([]LevelRemarkView, 0, len(remarks))
	for _, l := range remarks {
		out = append(out, LevelRemarkView{
			RoleCode:      l.RoleCode,
			RoleName:      l.RoleName,
			ShortRole:     ShortRole(l.RoleCode),
			Message:       l.Message,
			Action:        verification.ToTitleCase(l.Action),
			ReceivingDate: verification.FormatLocalDateTime(l.ReceivingDate.Time()),
		})
	}
	return out
}

func listSafs(w http.ResponseWriter, q *gorm.DB, page, perPage int) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&models.SafApplication{}).Count(&total).Error; err != nil {
		writeDBError(w, "applications", err)
		return
	}
	var safs []models.SafApplication
	err := q.Session(&gorm.Session{}).Preload("Owners", func(tx *gorm.DB) *gorm.DB { return tx.Order("sort_order") }).
		Order("apply_date DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&safs).Error
	if err != nil {
		writeDBError(w, "applications", err)
		return
	}
	opts, err := LoadMasterOptions(config.DB)
	if err != nil {
		writeDBError(w, "master data", err)
		return
	}
	m := opts.MasterData()

	rows := make([]SafSummary, 0, len(safs))
	for _, s := range safs {
		rows = append(rows, summarize(s, m))
	}
	utils.WriteSuccess(w, http.StatusOK, "", newPage(rows, page, perPage, total))
}

// Inbox godoc
// @Summary      Applications waiting at the user's role
// @Tags         property
// @Accept       json
// @Produce      json
// @Router       /api/property/inbox [post]
func Inbox(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, perPage := req.normalized()

	user := middleware.GetUser(r)
	q := config.DB.Where("status = ?", "pending")
	if user.RoleName() != models.SuperAdminRole {
		// current_role is a reserved word in Postgres
		q = q.Where(`"current_role" = ?`, user.RoleName())
	}
	if user.UlbID != nil {
		q = q.Where("ulb_id = ?", *user.UlbID)
	}
	listSafs(w, q, page, perPage)
}

// SearchSaf finds applications by SAF no, holding no or owner
func SearchSaf(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, perPage := req.normalized()

	q := config.DB.Model(&models.SafApplication{})
	if key := strings.TrimSpace(req.Key); key != "" {
		like := "%" + strings.ToLower(key) + "%"
		owners := config.DB.Model(&models.SafOwner{}).Select("saf_id").
			Where("LOWER(owner_name) LIKE ? OR mobile_no LIKE ?", like, like)
		q = q.Where("LOWER(saf_no) LIKE ? OR LOWER(holding_no) LIKE ? OR id IN (?)", like, like, owners)
	}
	if req.WardID > 0 {
		q = q.Where("ward_mstr_id = ?", req.WardID)
	}
	listSafs(w, q, page, perPage)
}

// GetSafDtl godoc
// @Summary      Full application with owners, floors, remarks and geo tags
// @Tags         property
// @Accept       json
// @Produce      json
// @Router       /api/property/get-saf-dtl [post]
func GetSafDtl(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var saf models.SafApplication
	if err := models.OrderedChildren(config.DB).First(&saf, "id = ?", req.ID).Error; err != nil {
		writeDBError(w, "application", err)
		return
	}
	var tags []models.GeoTag
	if err := config.DB.Where("saf_id = ?", saf.ID).Order("captured_at").Find(&tags).Error; err != nil {
		writeDBError(w, "geo tags", err)
		return
	}
	opts, err := LoadMasterOptions(config.DB)
	if err != nil {
		writeDBError(w, "master data", err)
		return
	}
	m := opts.MasterData()

	utils.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"saf":          saf,
		"summary":      summarize(saf, m),
		"zone":         m.Zones.Label(saf.ZoneMstrID),
		"levelRemarks": remarkViews(saf.LevelRemarks),
		"geoTags":      tags,
	})
}
