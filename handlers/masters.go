package handlers

import (
	"net/http"

	"gorm.io/gorm"
	"p9e.in/saf/config"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/verification"
	"p9e.in/saf/utils"
)

// MasterOptions is the master data as the app's dropdowns consume it
type MasterOptions struct {
	Wards             []verification.Option `json:"wardList"`
	NewWards          []verification.Option `json:"newWardList"`
	Zones             []verification.Option `json:"zoneList"`
	PropertyTypes     []verification.Option `json:"propertyTypeList"`
	UsageTypes        []verification.Option `json:"usageTypeList"`
	OccupancyTypes    []verification.Option `json:"occupancyTypeList"`
	ConstructionTypes []verification.Option `json:"constructionTypeList"`
	Floors            []verification.Option `json:"floorList"`
	Relations         []verification.Option `json:"relationTypeList"`
	Apartments        []verification.Option `json:"apartmentList"`
}

type oldWardRequest struct {
	OldWardID int64 `json:"oldWardId" validate:"required,min=1"`
}

func masterOptions(db *gorm.DB, category string) ([]verification.Option, error) {
	var rows []models.Master
	if err := db.Where("category = ? AND is_active = ?", category, true).Order("sort_order, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	opts := make([]verification.Option, 0, len(rows))
	for _, m := range rows {
		opts = append(opts, verification.Option{Label: m.Label, Value: m.ID})
	}
	return opts, nil
}

// LoadMasterOptions reads every enumeration in display order
func LoadMasterOptions(db *gorm.DB) (MasterOptions, error) {
	var out MasterOptions
	categories := []struct {
		name string
		dst  *[]verification.Option
	}{
		{models.MasterZone, &out.Zones},
		{models.MasterPropertyType, &out.PropertyTypes},
		{models.MasterUsageType, &out.UsageTypes},
		{models.MasterOccupancyType, &out.OccupancyTypes},
		{models.MasterConstructionType, &out.ConstructionTypes},
		{models.MasterFloor, &out.Floors},
		{models.MasterRelation, &out.Relations},
	}
	for _, c := range categories {
		opts, err := masterOptions(db, c.name)
		if err != nil {
			return out, err
		}
		*c.dst = opts
	}

	var wards []models.Ward
	if err := db.Order("id").Find(&wards).Error; err != nil {
		return out, err
	}
	for _, w := range wards {
		out.Wards = append(out.Wards, verification.Option{Label: w.WardNo, Value: w.ID})
	}
	var newWards []models.NewWard
	if err := db.Order("id").Find(&newWards).Error; err != nil {
		return out, err
	}
	for _, w := range newWards {
		out.NewWards = append(out.NewWards, verification.Option{Label: w.WardNo, Value: w.ID})
	}
	var apartments []models.Apartment
	if err := db.Order("name").Find(&apartments).Error; err != nil {
		return out, err
	}
	for _, a := range apartments {
		out.Apartments = append(out.Apartments, verification.Option{Label: a.Name, Value: a.ID})
	}
	return out, nil
}

// MasterData turns the options into the lookups the verification engine uses
func (o MasterOptions) MasterData() verification.MasterData {
	return verification.MasterData{
		Wards:             verification.NewLookup(o.Wards),
		NewWards:          verification.NewLookup(o.NewWards),
		Zones:             verification.NewLookup(o.Zones),
		PropertyTypes:     verification.NewLookup(o.PropertyTypes),
		UsageTypes:        verification.NewLookup(o.UsageTypes),
		OccupancyTypes:    verification.NewLookup(o.OccupancyTypes),
		ConstructionTypes: verification.NewLookup(o.ConstructionTypes),
		Apartments:        verification.NewLookup(o.Apartments),
	}
}

// GetSafMasterData godoc
// @Summary      Dropdown data of the SAF screens
// @Tags         masters
// @Produce      json
// @Router       /api/property/get-saf-master-data [post]
func GetSafMasterData(w http.ResponseWriter, r *http.Request) {
	opts, err := LoadMasterOptions(config.DB)
	if err != nil {
		writeDBError(w, "master data", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", opts)
}

// GetNewWardByOld lists the new wards an old ward was split into
func GetNewWardByOld(w http.ResponseWriter, r *http.Request) {
	var req oldWardRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var wards []models.NewWard
	if err := config.DB.Where("old_ward_id = ?", req.OldWardID).Order("id").Find(&wards).Error; err != nil {
		writeDBError(w, "new wards", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", wards)
}

// GetApartmentByOldWard lists the apartments registered in an old ward
func GetApartmentByOldWard(w http.ResponseWriter, r *http.Request) {
	var req oldWardRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var apartments []models.Apartment
	if err := config.DB.Where("old_ward_id = ?", req.OldWardID).Order("name").Find(&apartments).Error; err != nil {
		writeDBError(w, "apartments", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", apartments)
}
