package verification

const (
	PropertyTypeApartment  = 3
	PropertyTypeVacantLand = 4

	// RoleULBTC verifications carry no location evidence
	RoleULBTC = "ULB TC"
)

// FieldVerification is one verified scalar: the declared value, the
// inspector's override and whether the declared value was confirmed.
type FieldVerification struct {
	Self   any  `json:"self"`
	Verify any  `json:"verify"`
	Test   bool `json:"test"`
}

// Effective is the value the verification settles on
func (f FieldVerification) Effective() any {
	if f.Test {
		return f.Self
	}
	return f.Verify
}

// Confirmed wraps a declared value the inspector accepted
func Confirmed(v any) FieldVerification {
	return FieldVerification{Self: v, Test: true}
}

// Corrected wraps a declared value the inspector replaced
func Corrected(self, verify any) FieldVerification {
	return FieldVerification{Self: self, Verify: verify}
}

// FloorRecord is one declared floor. Key is the stable floor identifier.
type FloorRecord struct {
	Key                      string  `json:"key,omitempty"`
	FloorName                string  `json:"floorName"`
	UsageTypeMasterID        int64   `json:"usageTypeMasterId"`
	OccupancyTypeMasterID    int64   `json:"occupancyTypeMasterId"`
	ConstructionTypeMasterID int64   `json:"constructionTypeMasterId"`
	BuiltupArea              float64 `json:"builtupArea"`
	CarpetArea               float64 `json:"carpetArea"`
	DateFrom                 string  `json:"dateFrom"`
	DateUpto                 string  `json:"dateUpto"`
}

// VerifiedFloor is a floor as the inspector recorded it
type VerifiedFloor struct {
	Key                      string            `json:"key,omitempty"`
	FloorName                string            `json:"floorName"`
	UsageTypeMasterID        FieldVerification `json:"usageTypeMasterId"`
	OccupancyTypeMasterID    FieldVerification `json:"occupancyTypeMasterId"`
	ConstructionTypeMasterID FieldVerification `json:"constructionTypeMasterId"`
	BuiltupArea              FieldVerification `json:"builtupArea"`
	CarpetArea               FieldVerification `json:"carpetArea"`
	DateFrom                 FieldVerification `json:"dateFrom"`
	DateUpto                 FieldVerification `json:"dateUpto"`
}

// OwnerRecord is one owner row
type OwnerRecord struct {
	Key          string `json:"key,omitempty"`
	OwnerName    string `json:"ownerName"`
	GuardianName string `json:"guardianName"`
	RelationType string `json:"relationType"`
	MobileNo     string `json:"mobileNo"`
}

// GeoTag is one captured side of the property
type GeoTag struct {
	DirectionType string  `json:"directionType"`
	ImagePath     string  `json:"imagePath"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

// DeclaredRecord is the citizen's self-assessment
type DeclaredRecord struct {
	SafNo                    string        `json:"safNo"`
	WardMstrID               int64         `json:"wardMstrId"`
	NewWardMstrID            int64         `json:"newWardMstrId"`
	ZoneMstrID               int64         `json:"zoneMstrId"`
	PropTypeMstrID           int64         `json:"propTypeMstrId"`
	ApartmentName            string        `json:"apartmentName"`
	FlatRegistryDate         string        `json:"flatRegistryDate"`
	IsMobileTower            bool          `json:"isMobileTower"`
	TowerArea                float64       `json:"towerArea"`
	TowerInstallationDate    string        `json:"towerInstallationDate"`
	IsHoardingBoard          bool          `json:"isHoardingBoard"`
	HoardingArea             float64       `json:"hoardingArea"`
	HoardingInstallationDate string        `json:"hoardingInstallationDate"`
	IsPetrolPump             bool          `json:"isPetrolPump"`
	UnderGroundArea          float64       `json:"underGroundArea"`
	PetrolPumpCompletionDate string        `json:"petrolPumpCompletionDate"`
	IsWaterHarvesting        bool          `json:"isWaterHarvesting"`
	WaterHarvestingDate      string        `json:"waterHarvestingDate"`
	Floors                   []FloorRecord `json:"floors"`
	Owners                   []OwnerRecord `json:"owners"`
}

// VerifiedRecord is the field inspector's version of a DeclaredRecord
type VerifiedRecord struct {
	WardMstrID               FieldVerification `json:"wardMstrId"`
	NewWardMstrID            FieldVerification `json:"newWardMstrId"`
	ZoneMstrID               FieldVerification `json:"zoneMstrId"`
	PropTypeMstrID           FieldVerification `json:"propTypeMstrId"`
	ApartmentName            FieldVerification `json:"apartmentName"`
	FlatRegistryDate         FieldVerification `json:"flatRegistryDate"`
	IsMobileTower            FieldVerification `json:"isMobileTower"`
	TowerArea                FieldVerification `json:"towerArea"`
	TowerInstallationDate    FieldVerification `json:"towerInstallationDate"`
	IsHoardingBoard          FieldVerification `json:"isHoardingBoard"`
	HoardingArea             FieldVerification `json:"hoardingArea"`
	HoardingInstallationDate FieldVerification `json:"hoardingInstallationDate"`
	IsPetrolPump             FieldVerification `json:"isPetrolPump"`
	UnderGroundArea          FieldVerification `json:"underGroundArea"`
	PetrolPumpCompletionDate FieldVerification `json:"petrolPumpCompletionDate"`
	IsWaterHarvesting        FieldVerification `json:"isWaterHarvesting"`
	WaterHarvestingDate      FieldVerification `json:"waterHarvestingDate"`
	Floors                   []VerifiedFloor   `json:"floors"`
	Owners                   []OwnerRecord     `json:"owners"`
	Remarks                  string            `json:"remarks"`
	VerifiedBy               string            `json:"verifiedBy"`
	UserName                 string            `json:"userName"`
	VerificationDate         string            `json:"verificationDate"`
}

// Lookup resolves master ids to labels. Order of the entries is kept for
// dropdowns.
type Lookup struct {
	entries []Option
	index   map[string]string
}

// NewLookup indexes options by value
func NewLookup(options []Option) Lookup {
	l := Lookup{entries: options, index: make(map[string]string, len(options))}
	for _, o := range options {
		l.index[canonical(o.Value)] = o.Label
	}
	return l
}

// Label returns the label for id or "N/A"
func (l Lookup) Label(id any) string {
	if isBlank(id) {
		return NotAvailable
	}
	if label, ok := l.index[canonical(id)]; ok && label != "" {
		return label
	}
	return NotAvailable
}

// Options returns the entries in their original order
func (l Lookup) Options() []Option {
	return append([]Option(nil), l.entries...)
}

// Len is the number of entries
func (l Lookup) Len() int { return len(l.entries) }

// MasterData holds every enumeration the verification screens resolve
type MasterData struct {
	Wards             Lookup
	NewWards          Lookup
	Zones             Lookup
	PropertyTypes     Lookup
	UsageTypes        Lookup
	OccupancyTypes    Lookup
	ConstructionTypes Lookup
	Apartments        Lookup
}
