package verification

import (
	"fmt"
	"log"
)

// SectionKind tags a comparison section
type SectionKind string

const (
	SectionProperty   SectionKind = "property"
	SectionOwners     SectionKind = "owners"
	SectionFloor      SectionKind = "floor"
	SectionExtraFloor SectionKind = "extraFloor"
	SectionRemarks    SectionKind = "remarks"
	SectionFeatures   SectionKind = "features"
	SectionGeoTag     SectionKind = "geoTag"
)

var (
	comparisonColumns = []string{"Field", "Current Value", "Verified Value"}
	singleColumns     = []string{"Field", "Value"}
	geoTagColumns     = []string{"Location", "Image", "Coordinates"}
)

// Row is one line of a comparison. Match is set when the row comes from a
// FieldVerification and tells whether the declared value was confirmed.
type Row struct {
	Label    string `json:"label"`
	Current  string `json:"currentValue"`
	Verified string `json:"verifiedValue"`
	Match    *bool  `json:"match,omitempty"`
}

// Section is one renderable table
type Section struct {
	Kind     SectionKind `json:"kind"`
	Title    string      `json:"title"`
	Columns  []string    `json:"columns"`
	Rows     []Row       `json:"rows"`
	Degraded bool        `json:"degraded,omitempty"`
}

// Gap is a declared entity no verified entity was joined to
type Gap struct {
	Kind  SectionKind `json:"kind"`
	Index int         `json:"index"`
	Key   string      `json:"key,omitempty"`
	Name  string      `json:"name"`
}

// Input is everything the builder compares
type Input struct {
	Declared     DeclaredRecord
	Verified     VerifiedRecord
	Master       MasterData
	ExtraFloors  []FloorRecord
	VerifierRole string
	GeoTags      []GeoTag
}

// Result is the ordered comparison plus the declared entities left unmatched
type Result struct {
	Sections []Section `json:"sections"`
	Gaps     []Gap     `json:"gaps"`
}

// Section returns the first section of kind k
func (r Result) Section(k SectionKind) (Section, bool) {
	for _, s := range r.Sections {
		if s.Kind == k {
			return s, true
		}
	}
	return Section{}, false
}

// Count returns how many sections of kind k were built
func (r Result) Count(k SectionKind) int {
	n := 0
	for _, s := range r.Sections {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// Build joins a declared and a verified record into comparison sections.
// It never fails: missing data renders as "N/A" or "-".
func Build(in Input) Result {
	decl, ver, m := in.Declared, in.Verified, in.Master
	role := in.VerifierRole
	if role == "" {
		role = ver.VerifiedBy
	}

	var res Result
	res.Sections = append(res.Sections, propertySection(decl, ver, m))

	owners, ownerGaps := ownerSection(decl.Owners, ver.Owners)
	if len(owners.Rows) > 0 {
		res.Sections = append(res.Sections, owners)
	}
	res.Gaps = append(res.Gaps, ownerGaps...)

	vacant := decl.PropTypeMstrID == PropertyTypeVacantLand ||
		LooseEqual(ver.PropTypeMstrID.Effective(), PropertyTypeVacantLand)

	if !vacant {
		pairs, degraded, gaps := joinFloors(decl.Floors, ver.Floors)
		if degraded {
			log.Printf("[VERIFY] floor join for SAF %s fell back to position", decl.SafNo)
		}
		for i, p := range pairs {
			sec := floorSection(i, p.declared, p.verified, m)
			sec.Degraded = degraded
			res.Sections = append(res.Sections, sec)
		}
		res.Gaps = append(res.Gaps, gaps...)

		for i, f := range in.ExtraFloors {
			res.Sections = append(res.Sections, extraFloorSection(i, f, m))
		}
		if ver.Remarks != "" {
			res.Sections = append(res.Sections, Section{
				Kind:    SectionRemarks,
				Title:   "Remarks",
				Columns: singleColumns,
				Rows:    []Row{{Label: "Remarks", Verified: ver.Remarks}},
			})
		}
		res.Sections = append(res.Sections, featureSection(decl, ver))
	}

	if role != RoleULBTC {
		res.Sections = append(res.Sections, geoTagSection(in.GeoTags))
	}
	return res
}

func propertySection(decl DeclaredRecord, ver VerifiedRecord, m MasterData) Section {
	s := Section{Kind: SectionProperty, Title: "Property Details", Columns: comparisonColumns}
	s.Rows = append(s.Rows,
		lookupRow("Ward No", decl.WardMstrID, ver.WardMstrID, m.Wards),
		lookupRow("New Ward No", decl.NewWardMstrID, ver.NewWardMstrID, m.NewWards),
		lookupRow("Zone", decl.ZoneMstrID, ver.ZoneMstrID, m.Zones),
		lookupRow("Property Type", decl.PropTypeMstrID, ver.PropTypeMstrID, m.PropertyTypes),
	)
	if LooseEqual(ver.PropTypeMstrID.Effective(), PropertyTypeApartment) {
		s.Rows = append(s.Rows,
			textRow("Apartment Name", decl.ApartmentName, ver.ApartmentName),
			dateRow("Flat Registry Date", decl.FlatRegistryDate, ver.FlatRegistryDate),
		)
	}
	return s
}

// ownerSection joins owners like floors. A verification that did not
// re-record owners leaves the declared list standing with "-" as verified.
func ownerSection(declared, verified []OwnerRecord) (Section, []Gap) {
	s := Section{Kind: SectionOwners, Title: "Owner Details", Columns: comparisonColumns}
	if len(verified) == 0 {
		for i, o := range declared {
			s.Rows = append(s.Rows, ownerRows(i, o, OwnerRecord{})...)
		}
		return s, nil
	}

	keyed := allKeyed(len(declared), func(i int) string { return declared[i].Key }) &&
		allKeyed(len(verified), func(i int) string { return verified[i].Key })
	used := make(map[int]bool, len(declared))
	for i, v := range verified {
		idx := -1
		if keyed {
			for j, d := range declared {
				if d.Key == v.Key {
					idx = j
					break
				}
			}
		} else if i < len(declared) {
			idx = i
		}
		var d OwnerRecord
		if idx >= 0 {
			d = declared[idx]
			used[idx] = true
		}
		s.Rows = append(s.Rows, ownerRows(i, d, v)...)
	}
	s.Degraded = !keyed

	var gaps []Gap
	for j, d := range declared {
		if !used[j] {
			gaps = append(gaps, Gap{Kind: SectionOwners, Index: j, Key: d.Key, Name: d.OwnerName})
		}
	}
	return s, gaps
}

func ownerRows(i int, d, v OwnerRecord) []Row {
	prefix := fmt.Sprintf("Owner %d ", i+1)
	return []Row{
		{Label: prefix + "Name", Current: dash(d.OwnerName), Verified: dash(v.OwnerName)},
		{Label: prefix + "Guardian", Current: dash(d.GuardianName), Verified: dash(v.GuardianName)},
		{Label: prefix + "Relation", Current: dash(d.RelationType), Verified: dash(v.RelationType)},
		{Label: prefix + "Mobile No", Current: dash(d.MobileNo), Verified: dash(v.MobileNo)},
	}
}

func floorSection(i int, d FloorRecord, v VerifiedFloor, m MasterData) Section {
	title := v.FloorName
	if title == "" {
		title = fmt.Sprintf("Floor %d", i+1)
	}
	return Section{
		Kind:    SectionFloor,
		Title:   title + " Details",
		Columns: comparisonColumns,
		Rows: []Row{
			lookupRow("Usage Type", d.UsageTypeMasterID, v.UsageTypeMasterID, m.UsageTypes),
			lookupRow("Occupancy Type", d.OccupancyTypeMasterID, v.OccupancyTypeMasterID, m.OccupancyTypes),
			lookupRow("Construction Type", d.ConstructionTypeMasterID, v.ConstructionTypeMasterID, m.ConstructionTypes),
			textRow("Built-up Area", d.BuiltupArea, v.BuiltupArea),
			textRow("Carpet Area", d.CarpetArea, v.CarpetArea),
			dateRow("Date From", d.DateFrom, v.DateFrom),
			dateRow("Date Upto", d.DateUpto, v.DateUpto),
		},
	}
}

func extraFloorSection(i int, f FloorRecord, m MasterData) Section {
	return Section{
		Kind:    SectionExtraFloor,
		Title:   fmt.Sprintf("Extra Floor %d Details", i+1),
		Columns: singleColumns,
		Rows: []Row{
			{Label: "Usage Type", Verified: m.UsageTypes.Label(f.UsageTypeMasterID)},
			{Label: "Occupancy Type", Verified: m.OccupancyTypes.Label(f.OccupancyTypeMasterID)},
			{Label: "Construction Type", Verified: m.ConstructionTypes.Label(f.ConstructionTypeMasterID)},
			{Label: "Built-up Area", Verified: text(f.BuiltupArea)},
			{Label: "Carpet Area", Verified: text(f.CarpetArea)},
			{Label: "Date From", Verified: FormatLocalDate(f.DateFrom)},
			{Label: "Date Upto", Verified: FormatLocalDate(f.DateUpto)},
		},
	}
}

func featureSection(decl DeclaredRecord, ver VerifiedRecord) Section {
	s := Section{Kind: SectionFeatures, Title: "Other Property Features", Columns: comparisonColumns}

	s.Rows = append(s.Rows, flagRow("Mobile Tower", decl.IsMobileTower, ver.IsMobileTower))
	if Truthy(ver.IsMobileTower.Effective()) {
		s.Rows = append(s.Rows,
			textRow("Tower Area", decl.TowerArea, ver.TowerArea),
			dateRow("Installation Date", decl.TowerInstallationDate, ver.TowerInstallationDate))
	}

	s.Rows = append(s.Rows, flagRow("Hoarding", decl.IsHoardingBoard, ver.IsHoardingBoard))
	if Truthy(ver.IsHoardingBoard.Effective()) {
		s.Rows = append(s.Rows,
			textRow("Hoarding Area", decl.HoardingArea, ver.HoardingArea),
			dateRow("Installation Date", decl.HoardingInstallationDate, ver.HoardingInstallationDate))
	}

	s.Rows = append(s.Rows, flagRow("Petrol Pump", decl.IsPetrolPump, ver.IsPetrolPump))
	if Truthy(ver.IsPetrolPump.Effective()) {
		s.Rows = append(s.Rows,
			textRow("Pump Area", decl.UnderGroundArea, ver.UnderGroundArea),
			dateRow("Installation Date", decl.PetrolPumpCompletionDate, ver.PetrolPumpCompletionDate))
	}

	s.Rows = append(s.Rows, flagRow("Rainwater Harvesting", decl.IsWaterHarvesting, ver.IsWaterHarvesting))
	if Truthy(ver.IsWaterHarvesting.Effective()) {
		s.Rows = append(s.Rows,
			dateRow("Completion Date", decl.WaterHarvestingDate, ver.WaterHarvestingDate))
	}
	return s
}

func geoTagSection(tags []GeoTag) Section {
	s := Section{Kind: SectionGeoTag, Title: "Geo Tagging", Columns: geoTagColumns}
	for _, t := range tags {
		coords := "-"
		if t.Latitude != 0 || t.Longitude != 0 {
			coords = fmt.Sprintf("%.6f, %.6f", t.Latitude, t.Longitude)
		}
		s.Rows = append(s.Rows, Row{
			Label:    dash(ToTitleCase(t.DirectionType)),
			Current:  dash(t.ImagePath),
			Verified: coords,
		})
	}
	return s
}

func lookupRow(label string, declared any, fv FieldVerification, l Lookup) Row {
	return Row{Label: label, Current: l.Label(declared), Verified: l.Label(fv.Effective()), Match: match(fv)}
}

func textRow(label string, declared any, fv FieldVerification) Row {
	return Row{Label: label, Current: text(declared), Verified: text(fv.Effective()), Match: match(fv)}
}

func dateRow(label string, declared any, fv FieldVerification) Row {
	return Row{Label: label, Current: FormatLocalDate(declared), Verified: FormatLocalDate(fv.Effective()), Match: match(fv)}
}

// flagRow shows N/A on the verified side when nothing was recorded for the flag
func flagRow(label string, declared bool, fv FieldVerification) Row {
	m := match(fv)
	verified := NotAvailable
	if m != nil {
		verified = yesNo(Truthy(fv.Effective()))
	}
	return Row{Label: label, Current: yesNo(declared), Verified: verified, Match: m}
}

func match(fv FieldVerification) *bool {
	if fv.Self == nil && fv.Verify == nil && !fv.Test {
		return nil
	}
	t := fv.Test
	return &t
}

func text(v any) string {
	if isBlank(v) {
		return NotAvailable
	}
	return canonical(v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
