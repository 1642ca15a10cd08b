package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"p9e.in/saf/config"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/verification"
	"p9e.in/saf/utils"
)

var errNoVerification = errors.New("field verification not done yet")

// FieldView is one field card as the app renders it before any verdict
type FieldView struct {
	verification.FieldSpec
	AllowedStatuses []verification.Status `json:"allowedStatuses"`
}

// Comparison is the declared versus verified rendering of a SAF
type Comparison struct {
	Summary          SafSummary             `json:"summary"`
	VerifiedBy       string                 `json:"verifiedBy"`
	UserName         string                 `json:"userName"`
	VerificationDate string                 `json:"verificationDate"`
	Sections         []verification.Section `json:"sections"`
	Gaps             []verification.Gap     `json:"gaps"`
}

func loadSaf(db *gorm.DB, id string) (models.SafApplication, error) {
	var saf models.SafApplication
	err := models.OrderedChildren(db).First(&saf, "id = ?", id).Error
	return saf, err
}

func fieldViews(specs []verification.FieldSpec) []FieldView {
	out := make([]FieldView, 0, len(specs))
	for _, s := range specs {
		c := verification.NewFieldCard(s, nil)
		out = append(out, FieldView{FieldSpec: s, AllowedStatuses: c.AllowedStatuses()})
	}
	return out
}

// GetSafFieldVerification godoc
// @Summary      Declared values and field cards for a new verification
// @Tags         verification
// @Accept       json
// @Produce      json
// @Router       /api/property/get-saf-field-verification [post]
func GetSafFieldVerification(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	saf, err := loadSaf(config.DB, req.ID)
	if err != nil {
		writeDBError(w, "application", err)
		return
	}
	opts, err := LoadMasterOptions(config.DB)
	if err != nil {
		writeDBError(w, "master data", err)
		return
	}
	m := opts.MasterData()
	decl := saf.Declared()

	utils.WriteSuccess(w, http.StatusOK, "", map[string]any{
		"summary":       summarize(saf, m),
		"declared":      decl,
		"masterData":    opts,
		"fields":        fieldViews(verification.FieldSpecs(decl, m)),
		"geoTagProfile": verification.ProfileFor(saf.IsWaterHarvesting).Name(),
		"geoTagSides":   verification.ProfileFor(saf.IsWaterHarvesting).Sides(),
	})
}

// compare builds the comparison of the latest submitted verification
func compare(db *gorm.DB, id string) (Comparison, error) {
	saf, err := loadSaf(db, id)
	if err != nil {
		return Comparison{}, err
	}
	var fv models.FieldVerification
	err = db.Where("saf_id = ?", saf.ID).Order("created_at DESC").First(&fv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Comparison{}, errNoVerification
	}
	if err != nil {
		return Comparison{}, err
	}
	verified, extra, err := fv.Verified()
	if err != nil {
		return Comparison{}, err
	}

	var rows []models.GeoTag
	if err := db.Where("saf_id = ?", saf.ID).Order("captured_at").Find(&rows).Error; err != nil {
		return Comparison{}, err
	}
	tags := make([]verification.GeoTag, 0, len(rows))
	for _, g := range rows {
		tags = append(tags, g.Tag())
	}

	opts, err := LoadMasterOptions(db)
	if err != nil {
		return Comparison{}, err
	}
	m := opts.MasterData()

	res := verification.Build(verification.Input{
		Declared:     saf.Declared(),
		Verified:     verified,
		Master:       m,
		ExtraFloors:  extra,
		VerifierRole: fv.VerifiedBy,
		GeoTags:      tags,
	})
	return Comparison{
		Summary:          summarize(saf, m),
		VerifiedBy:       fv.VerifiedBy,
		UserName:         fv.UserName,
		VerificationDate: verification.FormatLocalDateTime(fv.VerificationDate.Time()),
		Sections:         res.Sections,
		Gaps:             res.Gaps,
	}, nil
}

func writeCompareError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNoVerification) {
		utils.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	writeDBError(w, "field verification", err)
}

// FieldVerificationDtl godoc
// @Summary      Declared versus verified comparison
// @Tags         verification
// @Accept       json
// @Produce      json
// @Router       /api/property/field-verification-dtl [post]
func FieldVerificationDtl(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmp, err := compare(config.DB, req.ID)
	if err != nil {
		writeCompareError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "", cmp)
}

// ExportFieldVerification streams the comparison as an xlsx workbook
func ExportFieldVerification(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := parseUUID(id); !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	cmp, err := compare(config.DB, id)
	if err != nil {
		writeCompareError(w, err)
		return
	}

	f, err := comparisonWorkbook(cmp)
	if err != nil {
		log.Printf("[EXPORT] build workbook: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to generate Excel file")
		return
	}
	defer f.Close()

	buffer, err := f.WriteToBuffer()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to write Excel file")
		return
	}

	filename := fmt.Sprintf("field_verification_%s_%s.xlsx", sanitizeFilename(cmp.Summary.SafNo), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

const exportSheet = "Verification"

func comparisonWorkbook(cmp Comparison) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	mismatchStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F8CBAD"}, Pattern: 1},
	})

	set := func(col, row int, v any) string {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		f.SetCellValue(exportSheet, cell, v)
		return cell
	}

	row := 1
	cell := set(1, row, "Field Verification "+cmp.Summary.SafNo)
	f.SetCellStyle(exportSheet, cell, cell, titleStyle)
	row++
	set(1, row, "Verified By")
	set(2, row, cmp.VerifiedBy+" "+cmp.UserName)
	set(3, row, cmp.VerificationDate)
	row += 2

	for _, s := range cmp.Sections {
		cell = set(1, row, s.Title)
		f.SetCellStyle(exportSheet, cell, cell, titleStyle)
		row++
		for i, c := range s.Columns {
			cell = set(i+1, row, c)
			f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		}
		row++
		for _, r := range s.Rows {
			first := set(1, row, r.Label)
			if len(s.Columns) == 2 {
				set(2, row, r.Verified)
			} else {
				set(2, row, r.Current)
				set(3, row, r.Verified)
			}
			if r.Match != nil && !*r.Match {
				last, _ := excelize.CoordinatesToCellName(len(s.Columns), row)
				f.SetCellStyle(exportSheet, first, last, mismatchStyle)
			}
			row++
		}
		row++
	}

	if len(cmp.Gaps) > 0 {
		cell = set(1, row, "Not Verified")
		f.SetCellStyle(exportSheet, cell, cell, titleStyle)
		row++
		for _, g := range cmp.Gaps {
			set(1, row, string(g.Kind))
			set(2, row, g.Name)
			row++
		}
	}

	f.SetColWidth(exportSheet, "A", "A", 28)
	f.SetColWidth(exportSheet, "B", "C", 36)
	return f, nil
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "saf"
	}
	return string(out)
}
