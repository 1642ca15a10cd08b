package verification

import "fmt"

// Field names shared by the card specs and the draft
const (
	FieldWard                     = "wardMstrId"
	FieldNewWard                  = "newWardMstrId"
	FieldZone                     = "zoneMstrId"
	FieldPropertyType             = "propTypeMstrId"
	FieldApartmentName            = "apartmentName"
	FieldFlatRegistryDate         = "flatRegistryDate"
	FieldMobileTower              = "isMobileTower"
	FieldTowerArea                = "towerArea"
	FieldTowerInstallationDate    = "towerInstallationDate"
	FieldHoarding                 = "isHoardingBoard"
	FieldHoardingArea             = "hoardingArea"
	FieldHoardingInstallationDate = "hoardingInstallationDate"
	FieldPetrolPump               = "isPetrolPump"
	FieldUnderGroundArea          = "underGroundArea"
	FieldPetrolPumpCompletionDate = "petrolPumpCompletionDate"
	FieldWaterHarvesting          = "isWaterHarvesting"
	FieldWaterHarvestingDate      = "waterHarvestingDate"
)

// FloorFieldName names a per-floor card. Floors without a key fall back to
// their position.
func FloorFieldName(f FloorRecord, index int, field string) string {
	id := f.Key
	if id == "" {
		id = fmt.Sprint(index)
	}
	return "floor." + id + "." + field
}

// FieldSpecs lists the cards of a new verification of decl, in screen order
func FieldSpecs(decl DeclaredRecord, m MasterData) []FieldSpec {
	specs := []FieldSpec{
		selectSpec(FieldWard, "Ward No", decl.WardMstrID, m.Wards, true),
		selectSpec(FieldNewWard, "New Ward No", decl.NewWardMstrID, m.NewWards, true),
		selectSpec(FieldZone, "Zone", decl.ZoneMstrID, m.Zones, true),
		selectSpec(FieldPropertyType, "Property Type", decl.PropTypeMstrID, m.PropertyTypes, true),
	}

	if decl.PropTypeMstrID == PropertyTypeApartment {
		specs = append(specs,
			valueSpec(FieldApartmentName, "Apartment Name", FieldText, decl.ApartmentName, false),
			valueSpec(FieldFlatRegistryDate, "Flat Registry Date", FieldDate, decl.FlatRegistryDate, false),
		)
	}

	if decl.PropTypeMstrID != PropertyTypeVacantLand {
		for i, f := range decl.Floors {
			label := f.FloorName
			if label == "" {
				label = fmt.Sprintf("Floor %d", i+1)
			}
			specs = append(specs,
				selectSpec(FloorFieldName(f, i, "usageTypeMasterId"), label+" Usage Type", f.UsageTypeMasterID, m.UsageTypes, true),
				selectSpec(FloorFieldName(f, i, "occupancyTypeMasterId"), label+" Occupancy Type", f.OccupancyTypeMasterID, m.OccupancyTypes, true),
				selectSpec(FloorFieldName(f, i, "constructionTypeMasterId"), label+" Construction Type", f.ConstructionTypeMasterID, m.ConstructionTypes, true),
				valueSpec(FloorFieldName(f, i, "builtupArea"), label+" Built-up Area", FieldNumber, f.BuiltupArea, true),
				valueSpec(FloorFieldName(f, i, "carpetArea"), label+" Carpet Area", FieldNumber, f.CarpetArea, false),
				valueSpec(FloorFieldName(f, i, "dateFrom"), label+" Date From", FieldYearMonth, f.DateFrom, true),
				valueSpec(FloorFieldName(f, i, "dateUpto"), label+" Date Upto", FieldYearMonth, f.DateUpto, false),
			)
		}

		specs = append(specs,
			flagSpec(FieldMobileTower, "Mobile Tower", decl.IsMobileTower),
			valueSpec(FieldTowerArea, "Tower Area", FieldNumber, decl.TowerArea, false),
			valueSpec(FieldTowerInstallationDate, "Tower Installation Date", FieldDate, decl.TowerInstallationDate, false),
			flagSpec(FieldHoarding, "Hoarding Board", decl.IsHoardingBoard),
			valueSpec(FieldHoardingArea, "Hoarding Area", FieldNumber, decl.HoardingArea, false),
			valueSpec(FieldHoardingInstallationDate, "Hoarding Installation Date", FieldDate, decl.HoardingInstallationDate, false),
			flagSpec(FieldPetrolPump, "Petrol Pump", decl.IsPetrolPump),
			valueSpec(FieldUnderGroundArea, "Underground Storage Area", FieldNumber, decl.UnderGroundArea, false),
			valueSpec(FieldPetrolPumpCompletionDate, "Petrol Pump Completion Date", FieldDate, decl.PetrolPumpCompletionDate, false),
			flagSpec(FieldWaterHarvesting, "Rainwater Harvesting", decl.IsWaterHarvesting),
			valueSpec(FieldWaterHarvestingDate, "Water Harvesting Completion Date", FieldDate, decl.WaterHarvestingDate, false),
		)
	}
	return specs
}

func selectSpec(name, label string, id int64, l Lookup, required bool) FieldSpec {
	s := FieldSpec{Name: name, Label: label, Type: FieldSelect, Required: required, Options: l.Options()}
	if id != 0 {
		s.SelfValue = id
		s.SelfLabel = l.Label(id)
	}
	return s
}

func valueSpec(name, label string, t FieldType, v any, required bool) FieldSpec {
	s := FieldSpec{Name: name, Label: label, Type: t, Required: required}
	if !isBlank(v) {
		s.SelfValue = v
		if t == FieldDate || t == FieldYearMonth {
			s.SelfLabel = FormatLocalDate(v)
		} else {
			s.SelfLabel = canonical(v)
		}
	}
	return s
}

func flagSpec(name, label string, declared bool) FieldSpec {
	v := "no"
	if declared {
		v = "yes"
	}
	return FieldSpec{
		Name:      name,
		Label:     label,
		Type:      FieldSelect,
		Required:  true,
		Options:   YesNoOptions,
		SelfValue: v,
		SelfLabel: yesNo(declared),
	}
}

// Preview folds the cards' verdicts and the draft overrides into a
// VerifiedRecord so a draft can be rendered by Build before submission.
func Preview(decl DeclaredRecord, cards []*FieldCard, d *Draft) VerifiedRecord {
	fv := func(name string) FieldVerification {
		c := FindCard(cards, name)
		if c == nil {
			return FieldVerification{}
		}
		out := FieldVerification{Self: c.spec.SelfValue, Test: c.Status() == StatusCorrect}
		if v, ok := d.Get(name); ok {
			out.Verify = v
		}
		return out
	}

	rec := VerifiedRecord{
		WardMstrID:               fv(FieldWard),
		NewWardMstrID:            fv(FieldNewWard),
		ZoneMstrID:               fv(FieldZone),
		PropTypeMstrID:           fv(FieldPropertyType),
		ApartmentName:            fv(FieldApartmentName),
		FlatRegistryDate:         fv(FieldFlatRegistryDate),
		IsMobileTower:            fv(FieldMobileTower),
		TowerArea:                fv(FieldTowerArea),
		TowerInstallationDate:    fv(FieldTowerInstallationDate),
		IsHoardingBoard:          fv(FieldHoarding),
		HoardingArea:             fv(FieldHoardingArea),
		HoardingInstallationDate: fv(FieldHoardingInstallationDate),
		IsPetrolPump:             fv(FieldPetrolPump),
		UnderGroundArea:          fv(FieldUnderGroundArea),
		PetrolPumpCompletionDate: fv(FieldPetrolPumpCompletionDate),
		IsWaterHarvesting:        fv(FieldWaterHarvesting),
		WaterHarvestingDate:      fv(FieldWaterHarvestingDate),
		Owners:                   decl.Owners,
	}
	for i, f := range decl.Floors {
		if FindCard(cards, FloorFieldName(f, i, "usageTypeMasterId")) == nil {
			continue
		}
		rec.Floors = append(rec.Floors, VerifiedFloor{
			Key:                      f.Key,
			FloorName:                f.FloorName,
			UsageTypeMasterID:        fv(FloorFieldName(f, i, "usageTypeMasterId")),
			OccupancyTypeMasterID:    fv(FloorFieldName(f, i, "occupancyTypeMasterId")),
			ConstructionTypeMasterID: fv(FloorFieldName(f, i, "constructionTypeMasterId")),
			BuiltupArea:              fv(FloorFieldName(f, i, "builtupArea")),
			CarpetArea:               fv(FloorFieldName(f, i, "carpetArea")),
			DateFrom:                 fv(FloorFieldName(f, i, "dateFrom")),
			DateUpto:                 fv(FloorFieldName(f, i, "dateUpto")),
		})
	}
	return rec
}
