package verification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Side is one photographed face of the property
type Side string

const (
	SideLeft            Side = "left"
	SideRight           Side = "right"
	SideFront           Side = "front"
	SideWaterHarvesting Side = "Water Harvesting"
)

// Profile fixes the sides a session must photograph. It is chosen when the
// session starts and never changes.
type Profile interface {
	Name() string
	Sides() []Side
	profile()
}

// StandardProfile photographs left, right and front
type StandardProfile struct{}

func (StandardProfile) Name() string  { return "standard" }
func (StandardProfile) Sides() []Side { return []Side{SideLeft, SideRight, SideFront} }
func (StandardProfile) profile()      {}

// RainwaterHarvestingProfile swaps the front for the harvesting structure
type RainwaterHarvestingProfile struct{}

func (RainwaterHarvestingProfile) Name() string { return "rainwaterHarvesting" }
func (RainwaterHarvestingProfile) Sides() []Side {
	return []Side{SideLeft, SideRight, SideWaterHarvesting}
}
func (RainwaterHarvestingProfile) profile() {}

// ProfileFor picks the profile from the SAF's rainwater harvesting flag
func ProfileFor(isRwh bool) Profile {
	if isRwh {
		return RainwaterHarvestingProfile{}
	}
	return StandardProfile{}
}

// ProfileByName is the inverse of Profile.Name
func ProfileByName(name string) (Profile, bool) {
	switch name {
	case StandardProfile{}.Name():
		return StandardProfile{}, true
	case RainwaterHarvestingProfile{}.Name():
		return RainwaterHarvestingProfile{}, true
	}
	return nil, false
}

// HasSide reports whether p photographs side
func HasSide(p Profile, side Side) bool {
	for _, s := range p.Sides() {
		if s == side {
			return true
		}
	}
	return false
}

// State of a capture session
type State string

const (
	StateNoPermission     State = "noPermission"
	StateAwaitingLocation State = "awaitingLocation"
	StateLocationAcquired State = "locationAcquired"
	StateClosed           State = "closed"
)

// Fix is a single location reading
type Fix struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Asset is what the camera hands back
type Asset struct {
	URI      string `json:"uri"`
	FileName string `json:"fileName"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
}

// Photo is an Asset stamped with the session's fix
type Photo struct {
	URI        string    `json:"uri"`
	FileName   string    `json:"fileName"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CapturedAt time.Time `json:"capturedAt"`
}

// PhotoMap holds at most one photo per side
type PhotoMap map[Side]*Photo

// Clone copies the map and the photos it points to
func (m PhotoMap) Clone() PhotoMap {
	out := make(PhotoMap, len(m))
	for side, p := range m {
		if p == nil {
			continue
		}
		cp := *p
		out[side] = &cp
	}
	return out
}

// PermissionKind names an OS permission
type PermissionKind string

const (
	PermissionLocation PermissionKind = "location"
	PermissionCamera   PermissionKind = "camera"
)

// Choice answers a permission denial
type Choice string

const (
	ChoiceCancel       Choice = "cancel"
	ChoiceOpenSettings Choice = "open_settings"
	ChoiceRetry        Choice = "retry"
)

// DenialChoices are offered on every denial, in display order
var DenialChoices = []Choice{ChoiceCancel, ChoiceOpenSettings, ChoiceRetry}

var (
	ErrCaptureCancelled = errors.New("capture cancelled")
	ErrLocationRequired = errors.New("location must be acquired before capturing")
	ErrUnknownSide      = errors.New("side is not part of the capture profile")
	ErrSessionClosed    = errors.New("capture session is closed")
	ErrUnknownChoice    = errors.New("unknown permission choice")
)

// PermissionDeniedError is returned when the user refuses a permission. Pass
// it to Session.Resolve together with one of Choices.
type PermissionDeniedError struct {
	Kind    PermissionKind `json:"permission"`
	Choices []Choice       `json:"choices"`
	Side    Side           `json:"side,omitempty"`
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("%s permission denied", e.Kind)
}

// LocationRequest tunes the single-shot location read
type LocationRequest struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// DefaultLocationRequest asks for a high accuracy fix no older than 30s
var DefaultLocationRequest = LocationRequest{
	HighAccuracy: true,
	Timeout:      60 * time.Second,
	MaximumAge:   30 * time.Second,
}

type PermissionProvider interface {
	Request(ctx context.Context, kind PermissionKind) (bool, error)
}

type LocationProvider interface {
	CurrentPosition(ctx context.Context, req LocationRequest) (Fix, error)
}

// Camera returns ErrCaptureCancelled when the user backs out
type Camera interface {
	Capture(ctx context.Context) (*Asset, error)
}

type SettingsOpener interface {
	OpenSettings(ctx context.Context, kind PermissionKind) error
}

// Providers are the device capabilities a session drives. They may change
// from one call to the next; the session only keeps its own state.
type Providers struct {
	Permissions PermissionProvider
	Location    LocationProvider
	Camera      Camera
	Settings    SettingsOpener
}

// SessionConfig carries the optional knobs of a session
type SessionConfig struct {
	Request  LocationRequest
	OnChange func(PhotoMap) // every side of the profile, nil when empty
	Now      func() time.Time
}

// Session captures one photo per profile side, all stamped with one fix
type Session struct {
	mu        sync.Mutex
	profile   Profile
	state     State
	fix       *Fix
	photos    PhotoMap
	providers Providers
	cfg       SessionConfig
}

// NewSession starts a session in the NoPermission state
func NewSession(profile Profile, p Providers, cfg SessionConfig) *Session {
	if profile == nil {
		profile = StandardProfile{}
	}
	if cfg.Request == (LocationRequest{}) {
		cfg.Request = DefaultLocationRequest
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Session{
		profile:   profile,
		state:     StateNoPermission,
		photos:    make(PhotoMap),
		providers: p,
		cfg:       cfg,
	}
}

func (s *Session) Profile() Profile { return s.profile }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Fix returns the session's location fix, if any
func (s *Session) Fix() (Fix, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fix == nil {
		return Fix{}, false
	}
	return *s.fix, true
}

// Photos returns a copy of the photo map with every side of the profile
// present, nil where nothing is captured
func (s *Session) Photos() PhotoMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sides()
}

func (s *Session) sides() PhotoMap {
	out := make(PhotoMap, len(s.profile.Sides()))
	for _, side := range s.profile.Sides() {
		out[side] = nil
		if p := s.photos[side]; p != nil {
			cp := *p
			out[side] = &cp
		}
	}
	return out
}

// Complete reports whether every side of the profile has a photo
func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, side := range s.profile.Sides() {
		if s.photos[side] == nil {
			return false
		}
	}
	return true
}

// AcquireLocation asks for location permission and reads one fix. A failed
// or stale reading is logged and leaves the state unchanged.
func (s *Session) AcquireLocation(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return ErrSessionClosed
	}
	granted, err := s.request(ctx, PermissionLocation)
	if err != nil {
		return err
	}
	if !granted {
		if s.fix == nil {
			s.state = StateNoPermission
		}
		return &PermissionDeniedError{Kind: PermissionLocation, Choices: DenialChoices}
	}
	if s.fix == nil {
		s.state = StateAwaitingLocation
	}
	if s.providers.Location == nil {
		log.Printf("[GEOTAG] no location provider")
		return nil
	}

	fix, err := s.providers.Location.CurrentPosition(ctx, s.cfg.Request)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		log.Printf("[GEOTAG] location unavailable: %v", err)
		return nil
	}
	if age := s.cfg.Now().Sub(fix.Timestamp); !fix.Timestamp.IsZero() && age > s.cfg.Request.MaximumAge {
		log.Printf("[GEOTAG] discarding fix %s old", age.Round(time.Second))
		return nil
	}
	if fix.Timestamp.IsZero() {
		fix.Timestamp = s.cfg.Now()
	}
	s.fix = &fix
	s.state = StateLocationAcquired
	return nil
}

// Capture photographs side. Camera cancellation is not an error.
func (s *Session) Capture(ctx context.Context, side Side) error {
	s.mu.Lock()

	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !HasSide(s.profile, side) {
		s.mu.Unlock()
		return fmt.Errorf("%q: %w", side, ErrUnknownSide)
	}
	if s.fix == nil {
		s.mu.Unlock()
		return ErrLocationRequired
	}
	granted, err := s.request(ctx, PermissionCamera)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !granted {
		s.mu.Unlock()
		return &PermissionDeniedError{Kind: PermissionCamera, Choices: DenialChoices, Side: side}
	}
	if s.providers.Camera == nil {
		s.mu.Unlock()
		log.Printf("[GEOTAG] no camera")
		return nil
	}

	asset, err := s.providers.Camera.Capture(ctx)
	if ctx.Err() != nil {
		s.mu.Unlock()
		return ctx.Err()
	}
	if err != nil || asset == nil {
		s.mu.Unlock()
		if err != nil && !errors.Is(err, ErrCaptureCancelled) {
			log.Printf("[GEOTAG] capture of %s failed: %v", side, err)
		}
		return nil
	}

	s.photos[side] = &Photo{
		URI:        asset.URI,
		FileName:   asset.FileName,
		Type:       asset.Type,
		Size:       asset.Size,
		Latitude:   s.fix.Latitude,
		Longitude:  s.fix.Longitude,
		CapturedAt: s.cfg.Now(),
	}
	snapshot := s.sides()
	s.mu.Unlock()

	s.emit(snapshot)
	return nil
}

// Remove clears the photo of side, leaving the other sides alone
func (s *Session) Remove(side Side) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !HasSide(s.profile, side) {
		s.mu.Unlock()
		return fmt.Errorf("%q: %w", side, ErrUnknownSide)
	}
	delete(s.photos, side)
	snapshot := s.sides()
	s.mu.Unlock()

	s.emit(snapshot)
	return nil
}

// Done closes the session
func (s *Session) Done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

// Resolve runs the user's answer to a permission denial. Retry re-enters the
// action that was denied.
func (s *Session) Resolve(ctx context.Context, err error, choice Choice) error {
	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		return err
	}
	switch choice {
	case ChoiceCancel:
		return nil
	case ChoiceOpenSettings:
		if s.providers.Settings == nil {
			return nil
		}
		return s.providers.Settings.OpenSettings(ctx, denied.Kind)
	case ChoiceRetry:
		if denied.Kind == PermissionCamera {
			return s.Capture(ctx, denied.Side)
		}
		return s.AcquireLocation(ctx)
	}
	return fmt.Errorf("%q: %w", choice, ErrUnknownChoice)
}

// SetProviders swaps the device capabilities, e.g. for a new request
func (s *Session) SetProviders(p Providers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers = p
}

func (s *Session) request(ctx context.Context, kind PermissionKind) (bool, error) {
	if s.providers.Permissions == nil {
		return true, nil
	}
	granted, err := s.providers.Permissions.Request(ctx, kind)
	if err != nil {
		return false, fmt.Errorf("request %s permission: %w", kind, err)
	}
	return granted, nil
}

func (s *Session) emit(photos PhotoMap) {
	if s.cfg.OnChange != nil {
		s.cfg.OnChange(photos)
	}
}

// Snapshot is the persisted form of a session
type Snapshot struct {
	Profile string   `json:"profile"`
	State   State    `json:"state"`
	Fix     *Fix     `json:"fix,omitempty"`
	Photos  PhotoMap `json:"photos"`
}

// Snapshot captures the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Profile: s.profile.Name(), State: s.state, Photos: s.photos.Clone()}
	if s.fix != nil {
		f := *s.fix
		snap.Fix = &f
	}
	return snap
}

// RestoreSession rebuilds a session from a Snapshot
func RestoreSession(snap Snapshot, p Providers, cfg SessionConfig) (*Session, error) {
	profile, ok := ProfileByName(snap.Profile)
	if !ok {
		return nil, fmt.Errorf("unknown capture profile %q", snap.Profile)
	}
	s := NewSession(profile, p, cfg)
	if snap.State != "" {
		s.state = snap.State
	}
	if snap.Fix != nil {
		f := *snap.Fix
		s.fix = &f
	}
	for side, photo := range snap.Photos {
		if photo != nil && HasSide(profile, side) {
			cp := *photo
			s.photos[side] = &cp
		}
	}
	return s, nil
}
