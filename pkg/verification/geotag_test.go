package verification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePermissions struct {
	granted map[PermissionKind]bool
	asked   []PermissionKind
}

func (f *fakePermissions) Request(_ context.Context, kind PermissionKind) (bool, error) {
	f.asked = append(f.asked, kind)
	return f.granted[kind], nil
}

type fakeLocation struct {
	fix   Fix
	err   error
	calls int
	req   LocationRequest
}

func (f *fakeLocation) CurrentPosition(_ context.Context, req LocationRequest) (Fix, error) {
	f.calls++
	f.req = req
	return f.fix, f.err
}

type fakeCamera struct {
	asset *Asset
	err   error
}

func (f *fakeCamera) Capture(context.Context) (*Asset, error) { return f.asset, f.err }

type fakeSettings struct{ opened []PermissionKind }

func (f *fakeSettings) OpenSettings(_ context.Context, kind PermissionKind) error {
	f.opened = append(f.opened, kind)
	return nil
}

var clock = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, isRwh bool) (*Session, *fakePermissions, *fakeLocation, *fakeCamera, *[]PhotoMap) {
	t.Helper()
	perms := &fakePermissions{granted: map[PermissionKind]bool{PermissionLocation: true, PermissionCamera: true}}
	loc := &fakeLocation{fix: Fix{Latitude: 23.34, Longitude: 85.31, Timestamp: clock.Add(-5 * time.Second)}}
	cam := &fakeCamera{asset: &Asset{URI: "file:///tmp/a.jpg", FileName: "a.jpg", Type: "image/jpeg", Size: 2048}}
	var changes []PhotoMap
	s := NewSession(ProfileFor(isRwh), Providers{Permissions: perms, Location: loc, Camera: cam}, SessionConfig{
		OnChange: func(m PhotoMap) { changes = append(changes, m) },
		Now:      func() time.Time { return clock },
	})
	return s, perms, loc, cam, &changes
}

func TestProfiles(t *testing.T) {
	assert.Equal(t, []Side{SideLeft, SideRight, SideFront}, ProfileFor(false).Sides())
	assert.Equal(t, []Side{SideLeft, SideRight, SideWaterHarvesting}, ProfileFor(true).Sides())

	p, ok := ProfileByName("rainwaterHarvesting")
	require.True(t, ok)
	assert.Equal(t, RainwaterHarvestingProfile{}, p)
	_, ok = ProfileByName("drone")
	assert.False(t, ok)
}

func TestAcquireLocation(t *testing.T) {
	s, _, loc, _, _ := newTestSession(t, false)
	assert.Equal(t, StateNoPermission, s.State())

	require.NoError(t, s.AcquireLocation(context.Background()))
	assert.Equal(t, StateLocationAcquired, s.State())
	assert.Equal(t, DefaultLocationRequest, loc.req)
	assert.True(t, loc.req.HighAccuracy)
	assert.Equal(t, 60*time.Second, loc.req.Timeout)
	assert.Equal(t, 30*time.Second, loc.req.MaximumAge)

	fix, ok := s.Fix()
	require.True(t, ok)
	assert.Equal(t, 23.34, fix.Latitude)
}

func TestAcquireLocationFailureIsSilent(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		s, _, loc, _, _ := newTestSession(t, false)
		loc.err = errors.New("timeout")
		assert.NoError(t, s.AcquireLocation(context.Background()))
		assert.Equal(t, StateAwaitingLocation, s.State())
	})

	t.Run("stale fix", func(t *testing.T) {
		s, _, loc, _, _ := newTestSession(t, false)
		loc.fix.Timestamp = clock.Add(-time.Minute)
		assert.NoError(t, s.AcquireLocation(context.Background()))
		assert.Equal(t, StateAwaitingLocation, s.State())
		_, ok := s.Fix()
		assert.False(t, ok)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s, _, _, _, _ := newTestSession(t, false)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, s.AcquireLocation(ctx), context.Canceled)
		_, ok := s.Fix()
		assert.False(t, ok)
	})
}

func TestLocationDeniedOffersThreeChoices(t *testing.T) {
	s, perms, loc, _, _ := newTestSession(t, false)
	perms.granted[PermissionLocation] = false

	err := s.AcquireLocation(context.Background())
	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, PermissionLocation, denied.Kind)
	assert.Equal(t, []Choice{ChoiceCancel, ChoiceOpenSettings, ChoiceRetry}, denied.Choices)
	assert.Equal(t, StateNoPermission, s.State())
	assert.Zero(t, loc.calls)

	// retry re-enters acquisition, which succeeds once granted
	perms.granted[PermissionLocation] = true
	require.NoError(t, s.Resolve(context.Background(), err, ChoiceRetry))
	assert.Equal(t, StateLocationAcquired, s.State())
}

func TestResolveChoices(t *testing.T) {
	s, perms, _, _, _ := newTestSession(t, false)
	settings := &fakeSettings{}
	s.SetProviders(Providers{Permissions: perms, Settings: settings})
	perms.granted[PermissionLocation] = false
	err := s.AcquireLocation(context.Background())

	assert.NoError(t, s.Resolve(context.Background(), err, ChoiceCancel))
	assert.NoError(t, s.Resolve(context.Background(), err, ChoiceOpenSettings))
	assert.Equal(t, []PermissionKind{PermissionLocation}, settings.opened)
	assert.ErrorIs(t, s.Resolve(context.Background(), err, "later"), ErrUnknownChoice)

	other := errors.New("boom")
	assert.Equal(t, other, s.Resolve(context.Background(), other, ChoiceRetry))
}

func TestCaptureRequiresLocation(t *testing.T) {
	s, _, _, _, changes := newTestSession(t, false)
	assert.ErrorIs(t, s.Capture(context.Background(), SideLeft), ErrLocationRequired)
	assert.Empty(t, *changes)
}

func TestCaptureStampsFixAndEmitsMap(t *testing.T) {
	s, _, _, _, changes := newTestSession(t, false)
	require.NoError(t, s.AcquireLocation(context.Background()))

	require.NoError(t, s.Capture(context.Background(), SideLeft))
	require.NoError(t, s.Capture(context.Background(), SideFront))

	require.Len(t, *changes, 2)
	last := (*changes)[1]
	require.NotNil(t, last[SideLeft])
	require.NotNil(t, last[SideFront])
	assert.Contains(t, last, SideRight)
	assert.Nil(t, last[SideRight])
	for _, side := range []Side{SideLeft, SideFront} {
		p := last[side]
		assert.Equal(t, 23.34, p.Latitude)
		assert.Equal(t, 85.31, p.Longitude)
		assert.Equal(t, clock, p.CapturedAt)
	}
	assert.False(t, s.Complete())

	// emitted maps are copies
	last[SideLeft].URI = "changed"
	assert.Equal(t, "file:///tmp/a.jpg", s.Photos()[SideLeft].URI)
}

func TestCaptureUnknownSide(t *testing.T) {
	s, _, _, _, _ := newTestSession(t, false)
	require.NoError(t, s.AcquireLocation(context.Background()))
	assert.ErrorIs(t, s.Capture(context.Background(), SideWaterHarvesting), ErrUnknownSide)

	rwh, _, _, _, _ := newTestSession(t, true)
	require.NoError(t, rwh.AcquireLocation(context.Background()))
	assert.ErrorIs(t, rwh.Capture(context.Background(), SideFront), ErrUnknownSide)
	assert.NoError(t, rwh.Capture(context.Background(), SideWaterHarvesting))
}

func TestCaptureCancelledIsNoOp(t *testing.T) {
	s, _, _, cam, changes := newTestSession(t, false)
	require.NoError(t, s.AcquireLocation(context.Background()))
	cam.asset, cam.err = nil, ErrCaptureCancelled

	assert.NoError(t, s.Capture(context.Background(), SideRight))
	assert.Empty(t, *changes)
	assert.Equal(t, PhotoMap{SideLeft: nil, SideRight: nil, SideFront: nil}, s.Photos())
}

func TestCameraDeniedCarriesSide(t *testing.T) {
	s, perms, _, _, changes := newTestSession(t, false)
	require.NoError(t, s.AcquireLocation(context.Background()))
	perms.granted[PermissionCamera] = false

	err := s.Capture(context.Background(), SideRight)
	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, PermissionCamera, denied.Kind)
	assert.Equal(t, SideRight, denied.Side)

	perms.granted[PermissionCamera] = true
	require.NoError(t, s.Resolve(context.Background(), err, ChoiceRetry))
	assert.Contains(t, (*changes)[0], SideRight)
}

func TestRemoveOnlyTouchesOneSide(t *testing.T) {
	s, _, _, _, changes := newTestSession(t, false)
	require.NoError(t, s.AcquireLocation(context.Background()))
	for _, side := range []Side{SideLeft, SideRight, SideFront} {
		require.NoError(t, s.Capture(context.Background(), side))
	}
	assert.True(t, s.Complete())

	require.NoError(t, s.Remove(SideRight))
	last := (*changes)[len(*changes)-1]
	assert.Contains(t, last, SideRight)
	assert.Nil(t, last[SideRight])
	assert.NotNil(t, last[SideLeft])
	assert.NotNil(t, last[SideFront])
}

func TestRemoveEmitsNullForEmptySides(t *testing.T) {
	tests := []struct {
		name  string
		isRwh bool
		third Side
	}{
		{"standard", false, SideFront},
		{"rainwater harvesting", true, SideWaterHarvesting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _, _, changes := newTestSession(t, tt.isRwh)
			require.NoError(t, s.AcquireLocation(context.Background()))
			require.NoError(t, s.Capture(context.Background(), SideLeft))
			require.NoError(t, s.Capture(context.Background(), SideRight))
			require.NoError(t, s.Remove(SideLeft))

			last := (*changes)[len(*changes)-1]
			require.Len(t, last, 3)
			for _, side := range []Side{SideLeft, SideRight, tt.third} {
				assert.Contains(t, last, side)
			}
			assert.Nil(t, last[SideLeft])
			assert.Nil(t, last[tt.third])
			require.NotNil(t, last[SideRight])
			assert.Equal(t, "a.jpg", last[SideRight].FileName)

			raw, err := json.Marshal(last)
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"left":null`)
			assert.Contains(t, string(raw), `"`+string(tt.third)+`":null`)
			assert.Equal(t, last, s.Photos())
		})
	}
}

func TestDoneClosesSession(t *testing.T) {
	s, _, _, _, changes := newTestSession(t, false)
	require.NoError(t, s.AcquireLocation(context.Background()))
	s.Done()
	assert.Equal(t, StateClosed, s.State())
	assert.ErrorIs(t, s.Capture(context.Background(), SideLeft), ErrSessionClosed)
	assert.ErrorIs(t, s.Remove(SideLeft), ErrSessionClosed)
	assert.ErrorIs(t, s.AcquireLocation(context.Background()), ErrSessionClosed)
	assert.Empty(t, *changes)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, perms, loc, cam, _ := newTestSession(t, true)
	require.NoError(t, s.AcquireLocation(context.Background()))
	require.NoError(t, s.Capture(context.Background(), SideWaterHarvesting))

	snap := s.Snapshot()
	restored, err := RestoreSession(snap, Providers{Permissions: perms, Location: loc, Camera: cam}, SessionConfig{})
	require.NoError(t, err)
	assert.Equal(t, RainwaterHarvestingProfile{}, restored.Profile())
	assert.Equal(t, StateLocationAcquired, restored.State())
	assert.Equal(t, s.Photos(), restored.Photos())

	_, err = RestoreSession(Snapshot{Profile: "unknown"}, Providers{}, SessionConfig{})
	assert.Error(t, err)
}
