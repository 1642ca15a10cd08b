package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMaster() MasterData {
	return MasterData{
		Wards:    NewLookup([]Option{{Label: "1", Value: int64(1)}, {Label: "2", Value: int64(2)}}),
		NewWards: NewLookup([]Option{{Label: "1A", Value: int64(11)}}),
		Zones:    NewLookup([]Option{{Label: "Zone 1", Value: int64(1)}}),
		PropertyTypes: NewLookup([]Option{
			{Label: "Independent Building", Value: int64(1)},
			{Label: "Flat", Value: int64(3)},
			{Label: "Vacant Land", Value: int64(4)},
		}),
		UsageTypes:        NewLookup([]Option{{Label: "Residential", Value: int64(1)}, {Label: "Commercial", Value: int64(2)}}),
		OccupancyTypes:    NewLookup([]Option{{Label: "Self Occupied", Value: int64(1)}, {Label: "Tenanted", Value: int64(2)}}),
		ConstructionTypes: NewLookup([]Option{{Label: "Pucca", Value: int64(1)}}),
	}
}

func twoFloorDeclared() DeclaredRecord {
	return DeclaredRecord{
		SafNo:          "SAF/001",
		WardMstrID:     1,
		NewWardMstrID:  11,
		ZoneMstrID:     1,
		PropTypeMstrID: 1,
		Floors: []FloorRecord{
			{Key: "f-ground", FloorName: "Ground Floor", UsageTypeMasterID: 1, OccupancyTypeMasterID: 1, ConstructionTypeMasterID: 1, BuiltupArea: 1000, DateFrom: "2015-04"},
			{Key: "f-first", FloorName: "First Floor", UsageTypeMasterID: 2, OccupancyTypeMasterID: 2, ConstructionTypeMasterID: 1, BuiltupArea: 800, DateFrom: "2018-04"},
		},
	}
}

func verifiedFloor(key, name string, usage any) VerifiedFloor {
	return VerifiedFloor{
		Key:                      key,
		FloorName:                name,
		UsageTypeMasterID:        Confirmed(usage),
		OccupancyTypeMasterID:    Confirmed(1),
		ConstructionTypeMasterID: Confirmed(1),
		BuiltupArea:              Corrected(1000, 950),
	}
}

func rowByLabel(t *testing.T, s Section, label string) Row {
	t.Helper()
	for _, r := range s.Rows {
		if r.Label == label {
			return r
		}
	}
	t.Fatalf("row %q not found in %q", label, s.Title)
	return Row{}
}

func TestBuildPropertySection(t *testing.T) {
	in := Input{
		Declared: twoFloorDeclared(),
		Verified: VerifiedRecord{
			WardMstrID:     Corrected(1, 2.0),
			NewWardMstrID:  Confirmed(11),
			ZoneMstrID:     Corrected(1, 9),
			PropTypeMstrID: Confirmed(1),
		},
		Master: testMaster(),
	}
	res := Build(in)

	prop, ok := res.Section(SectionProperty)
	require.True(t, ok)
	ward := rowByLabel(t, prop, "Ward No")
	assert.Equal(t, "1", ward.Current)
	assert.Equal(t, "2", ward.Verified)
	require.NotNil(t, ward.Match)
	assert.False(t, *ward.Match)

	assert.Equal(t, "N/A", rowByLabel(t, prop, "Zone").Verified)
	assert.Len(t, prop.Rows, 4)
}

func TestBuildApartmentRows(t *testing.T) {
	decl := twoFloorDeclared()
	decl.ApartmentName = "Green Residency"
	res := Build(Input{
		Declared: decl,
		Verified: VerifiedRecord{
			PropTypeMstrID:   Corrected(1, 3),
			ApartmentName:    Corrected("Green Residency", "Green Residency Phase 2"),
			FlatRegistryDate: Confirmed(""),
		},
		Master: testMaster(),
	})
	prop, _ := res.Section(SectionProperty)
	assert.Equal(t, "Green Residency Phase 2", rowByLabel(t, prop, "Apartment Name").Verified)
	assert.Equal(t, "N/A", rowByLabel(t, prop, "Flat Registry Date").Current)
}

func TestBuildFloorsJoinByKey(t *testing.T) {
	SetDisplayLocation(time.UTC)
	in := Input{
		Declared: twoFloorDeclared(),
		Verified: VerifiedRecord{
			PropTypeMstrID: Confirmed(1),
			Floors: []VerifiedFloor{
				verifiedFloor("f-first", "First Floor", 2),
				verifiedFloor("f-ground", "Ground Floor", 1),
			},
		},
		Master: testMaster(),
	}
	res := Build(in)

	require.Equal(t, 2, res.Count(SectionFloor))
	first := res.Sections[1]
	assert.Equal(t, "First Floor Details", first.Title)
	assert.False(t, first.Degraded)
	assert.Equal(t, "Commercial", rowByLabel(t, first, "Usage Type").Current)
	assert.Equal(t, "800", rowByLabel(t, first, "Built-up Area").Current)
	assert.Equal(t, "950", rowByLabel(t, first, "Built-up Area").Verified)
	assert.Equal(t, "01-04-2018", rowByLabel(t, first, "Date From").Current)
	assert.Empty(t, res.Gaps)
}

func TestBuildFloorsPositionalFallback(t *testing.T) {
	decl := twoFloorDeclared()
	decl.Floors[1].Key = ""
	res := Build(Input{
		Declared: decl,
		Verified: VerifiedRecord{
			Floors: []VerifiedFloor{
				verifiedFloor("f-first", "First Floor", 2),
			},
		},
		Master: testMaster(),
	})

	require.Equal(t, 1, res.Count(SectionFloor))
	floor, _ := res.Section(SectionFloor)
	assert.True(t, floor.Degraded)
	// positional: the first verified floor meets the first declared floor
	assert.Equal(t, "Residential", rowByLabel(t, floor, "Usage Type").Current)
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, Gap{Kind: SectionFloor, Index: 1, Name: "First Floor"}, res.Gaps[0])
}

func TestBuildExtraVerifiedFloorRendersNA(t *testing.T) {
	decl := twoFloorDeclared()
	decl.Floors = decl.Floors[:1]
	decl.Floors[0].Key = ""
	res := Build(Input{
		Declared: decl,
		Verified: VerifiedRecord{
			Floors: []VerifiedFloor{
				verifiedFloor("", "Ground Floor", 1),
				verifiedFloor("", "", 2),
			},
		},
		Master: testMaster(),
	})

	require.Equal(t, 2, res.Count(SectionFloor))
	second := res.Sections[2]
	assert.Equal(t, "Floor 2 Details", second.Title)
	for _, r := range second.Rows {
		assert.Equal(t, "N/A", r.Current, r.Label)
	}
}

func TestBuildDeclaredLongerReportsGaps(t *testing.T) {
	res := Build(Input{
		Declared: twoFloorDeclared(),
		Verified: VerifiedRecord{Floors: []VerifiedFloor{verifiedFloor("f-ground", "Ground Floor", 1)}},
		Master:   testMaster(),
	})
	assert.Equal(t, 1, res.Count(SectionFloor))
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, "f-first", res.Gaps[0].Key)
}

func TestBuildVacantLandSuppressesSections(t *testing.T) {
	tests := []struct {
		name     string
		declared int64
		verified FieldVerification
	}{
		{"declared vacant", 4, Confirmed(4)},
		{"verified vacant", 1, Corrected(1, 4.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := twoFloorDeclared()
			decl.PropTypeMstrID = tt.declared
			res := Build(Input{
				Declared: decl,
				Verified: VerifiedRecord{
					PropTypeMstrID: tt.verified,
					Floors:         []VerifiedFloor{verifiedFloor("f-ground", "Ground Floor", 1)},
					Remarks:        "checked",
				},
				ExtraFloors: []FloorRecord{{FloorName: "Terrace"}},
				Master:      testMaster(),
			})
			for _, k := range []SectionKind{SectionFloor, SectionExtraFloor, SectionRemarks, SectionFeatures} {
				assert.Zero(t, res.Count(k), k)
			}
			assert.Equal(t, 1, res.Count(SectionProperty))
		})
	}
}

func TestBuildFeatureDetailRowsFollowVerifiedFlag(t *testing.T) {
	decl := twoFloorDeclared()
	decl.IsMobileTower = true
	decl.TowerArea = 50
	res := Build(Input{
		Declared: decl,
		Verified: VerifiedRecord{
			IsMobileTower:     Corrected("yes", "no"),
			IsHoardingBoard:   Corrected("no", "yes"),
			HoardingArea:      Corrected(nil, "120"),
			IsWaterHarvesting: Confirmed("yes"),
		},
		Master: testMaster(),
	})
	f, ok := res.Section(SectionFeatures)
	require.True(t, ok)

	labels := make([]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{
		"Mobile Tower",
		"Hoarding", "Hoarding Area", "Installation Date",
		"Petrol Pump",
		"Rainwater Harvesting", "Completion Date",
	}, labels)

	tower := rowByLabel(t, f, "Mobile Tower")
	assert.Equal(t, "Yes", tower.Current)
	assert.Equal(t, "No", tower.Verified)
	assert.Equal(t, "120", rowByLabel(t, f, "Hoarding Area").Verified)

	// nothing recorded for the petrol pump
	pump := rowByLabel(t, f, "Petrol Pump")
	assert.Equal(t, NotAvailable, pump.Verified)
	assert.Nil(t, pump.Match)
}

func TestBuildGeoTagSection(t *testing.T) {
	tags := []GeoTag{
		{DirectionType: "left", ImagePath: "/uploads/l.jpg", Latitude: 23.3441, Longitude: 85.3096},
		{DirectionType: "Water Harvesting"},
	}

	res := Build(Input{Declared: twoFloorDeclared(), Master: testMaster(), VerifierRole: "AMC", GeoTags: tags})
	geo, ok := res.Section(SectionGeoTag)
	require.True(t, ok)
	require.Len(t, geo.Rows, 2)
	assert.Equal(t, Row{Label: "Left", Current: "/uploads/l.jpg", Verified: "23.344100, 85.309600"}, geo.Rows[0])
	assert.Equal(t, Row{Label: "Water Harvesting", Current: "-", Verified: "-"}, geo.Rows[1])

	res = Build(Input{Declared: twoFloorDeclared(), Master: testMaster(), VerifierRole: RoleULBTC, GeoTags: tags})
	assert.Zero(t, res.Count(SectionGeoTag))

	res = Build(Input{
		Declared: twoFloorDeclared(),
		Verified: VerifiedRecord{VerifiedBy: RoleULBTC},
		Master:   testMaster(),
		GeoTags:  tags,
	})
	assert.Zero(t, res.Count(SectionGeoTag))
}

func TestBuildOwners(t *testing.T) {
	decl := twoFloorDeclared()
	decl.Owners = []OwnerRecord{{Key: "o1", OwnerName: "Ravi Kumar", MobileNo: "9000000001"}}

	res := Build(Input{Declared: decl, Master: testMaster()})
	owners, ok := res.Section(SectionOwners)
	require.True(t, ok)
	name := rowByLabel(t, owners, "Owner 1 Name")
	assert.Equal(t, "Ravi Kumar", name.Current)
	assert.Equal(t, "-", name.Verified)
	assert.Equal(t, "-", rowByLabel(t, owners, "Owner 1 Guardian").Current)
}

func TestBuildEmptyInputDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		res := Build(Input{})
		prop, ok := res.Section(SectionProperty)
		require.True(t, ok)
		for _, r := range prop.Rows {
			assert.Equal(t, "N/A", r.Current)
		}
	})
}

func TestPreviewRendersDraft(t *testing.T) {
	SetDisplayLocation(time.UTC)
	decl := twoFloorDeclared()
	m := testMaster()
	d := NewDraft()
	cards := d.Bind(FieldSpecs(decl, m), nil)

	require.NoError(t, FindCard(cards, FieldWard).SelectStatus(StatusIncorrect))
	require.NoError(t, FindCard(cards, FieldWard).PickOption(2))
	require.NoError(t, FindCard(cards, FieldPropertyType).SelectStatus(StatusCorrect))
	usage := FindCard(cards, FloorFieldName(decl.Floors[0], 0, "usageTypeMasterId"))
	require.NotNil(t, usage)
	require.NoError(t, usage.SelectStatus(StatusIncorrect))
	require.NoError(t, usage.PickOption(2))

	res := Build(Input{Declared: decl, Verified: Preview(decl, cards, d), Master: m})

	prop, _ := res.Section(SectionProperty)
	assert.Equal(t, "2", rowByLabel(t, prop, "Ward No").Verified)
	assert.Equal(t, "Independent Building", rowByLabel(t, prop, "Property Type").Verified)

	floor, _ := res.Section(SectionFloor)
	assert.Equal(t, "Commercial", rowByLabel(t, floor, "Usage Type").Verified)
	assert.Equal(t, 2, res.Count(SectionFloor))
	assert.Empty(t, res.Gaps)
}

func TestFieldSpecsForVacantLand(t *testing.T) {
	decl := twoFloorDeclared()
	decl.PropTypeMstrID = PropertyTypeVacantLand
	specs := FieldSpecs(decl, testMaster())
	assert.Len(t, specs, 4)

	decl.PropTypeMstrID = PropertyTypeApartment
	specs = FieldSpecs(decl, testMaster())
	names := map[string]bool{}
	for _, s := range specs {
		names[s.Name] = true
	}
	assert.True(t, names[FieldApartmentName])
	assert.True(t, names["floor.f-first.dateFrom"])
}
