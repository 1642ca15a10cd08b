package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"p9e.in/saf/config"
	"p9e.in/saf/middleware"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/photostore"
	"p9e.in/saf/pkg/sessionstore"
	"p9e.in/saf/pkg/verification"
	"p9e.in/saf/utils"
)

const maxPhotoSize = 10 << 20

// captureState is what the session store keeps of a capture session
type captureState struct {
	ID          string                              `json:"id"`
	SafID       string                              `json:"safId"`
	UserID      string                              `json:"userId"`
	Session     verification.Snapshot               `json:"session"`
	Objects     map[verification.Side]string        `json:"objects"`
	OutsideWard bool                                `json:"outsideWard"`
	Pending     *verification.PermissionDeniedError `json:"pending,omitempty"`
}

// CaptureView is the capture session as the app renders it
type CaptureView struct {
	ID          string                `json:"id"`
	SafID       string                `json:"safId"`
	Profile     string                `json:"profile"`
	Sides       []verification.Side   `json:"sides"`
	State       verification.State    `json:"state"`
	Fix         *verification.Fix     `json:"fix,omitempty"`
	Photos      verification.PhotoMap `json:"photos"`
	Complete    bool                  `json:"complete"`
	OutsideWard bool                  `json:"outsideWard"`
}

type startCaptureRequest struct {
	SafID string `json:"safId" validate:"required,uuid"`
	IsRwh *bool  `json:"isRwh"`
}

// locationRequest carries what the device reported for one location read
type locationRequest struct {
	Granted    *bool   `json:"granted"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`
	Accuracy   float64 `json:"accuracy" validate:"min=0"`
	CapturedAt string  `json:"capturedAt"`
	Error      string  `json:"error"`
}

type permissionChoiceRequest struct {
	locationRequest
	Choice verification.Choice `json:"choice" validate:"required,oneof=cancel open_settings retry"`
}

// devicePermissions answers with what the device reported
type devicePermissions struct{ granted bool }

func (d devicePermissions) Request(context.Context, verification.PermissionKind) (bool, error) {
	return d.granted, nil
}

// reportedLocation hands the session the fix posted by the device
type reportedLocation struct{ req locationRequest }

func (l reportedLocation) CurrentPosition(context.Context, verification.LocationRequest) (verification.Fix, error) {
	if l.req.Error != "" {
		return verification.Fix{}, errors.New(l.req.Error)
	}
	fix := verification.Fix{Latitude: l.req.Latitude, Longitude: l.req.Longitude, Accuracy: l.req.Accuracy}
	if l.req.CapturedAt != "" {
		t, ok := verification.ParseDate(l.req.CapturedAt)
		if !ok {
			return verification.Fix{}, fmt.Errorf("capturedAt %q is not a timestamp", l.req.CapturedAt)
		}
		fix.Timestamp = t
	}
	return fix, nil
}

// uploadCamera stores the uploaded photo when the session asks for it
type uploadCamera struct {
	safID   string
	side    verification.Side
	file    multipart.File
	header  *multipart.FileHeader
	objects map[verification.Side]string
}

func (c *uploadCamera) Capture(ctx context.Context) (*verification.Asset, error) {
	if c.file == nil {
		return nil, verification.ErrCaptureCancelled
	}
	if Photos == nil {
		return nil, errors.New("photo store is not configured")
	}
	contentType := c.header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	name := photostore.ObjectName(c.safID, string(c.side), c.header.Filename, time.Now())
	url, err := Photos.Save(ctx, name, c.file, c.header.Size, contentType)
	if err != nil {
		return nil, err
	}
	c.objects[c.side] = name
	return &verification.Asset{URI: url, FileName: c.header.Filename, Type: contentType, Size: c.header.Size}, nil
}

// settingsRecorder notes that the app should open the OS settings screen
type settingsRecorder struct{ opened *verification.PermissionKind }

func (s settingsRecorder) OpenSettings(_ context.Context, kind verification.PermissionKind) error {
	*s.opened = kind
	return nil
}

func captureKey(id string) string { return sessionstore.Key("geotag", id) }

func granted(b *bool) bool { return b == nil || *b }

func (st *captureState) view(s *verification.Session) CaptureView {
	v := CaptureView{
		ID:          st.ID,
		SafID:       st.SafID,
		Profile:     s.Profile().Name(),
		Sides:       s.Profile().Sides(),
		State:       s.State(),
		Photos:      s.Photos(),
		Complete:    s.Complete(),
		OutsideWard: st.OutsideWard,
	}
	if fix, ok := s.Fix(); ok {
		v.Fix = &fix
	}
	return v
}

// syncGeoTags mirrors the session's photo map into GeoTag rows and drops
// the stored objects of removed or replaced sides
func (st *captureState) syncGeoTags(ctx context.Context, photos verification.PhotoMap, objects map[verification.Side]string) error {
	safID, err := uuid.Parse(st.SafID)
	if err != nil {
		return err
	}
	var createdBy *uuid.UUID
	if uid, err := uuid.Parse(st.UserID); err == nil {
		createdBy = &uid
	}

	var stale []string
	err = config.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.GeoTag
		if err := tx.Where("saf_id = ?", safID).Find(&existing).Error; err != nil {
			return err
		}
		for _, row := range existing {
			side := verification.Side(row.DirectionType)
			p, keep := photos[side]
			if keep && p.URI == row.ImagePath {
				continue
			}
			if err := tx.Delete(&row).Error; err != nil {
				return err
			}
			if row.ObjectName != "" {
				stale = append(stale, row.ObjectName)
			}
		}
		for side, p := range photos {
			var count int64
			if err := tx.Model(&models.GeoTag{}).Where("saf_id = ? AND direction_type = ?", safID, string(side)).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			row := models.GeoTag{
				SafID:         safID,
				DirectionType: string(side),
				ImagePath:     p.URI,
				ObjectName:    objects[side],
				Latitude:      p.Latitude,
				Longitude:     p.Longitude,
				OutsideWard:   st.OutsideWard,
				CapturedAt:    p.CapturedAt,
				CreatedBy:     createdBy,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range stale {
		if Photos == nil {
			break
		}
		if err := Photos.Delete(ctx, name); err != nil {
			log.Printf("[GEOTAG] delete photo %s: %v", name, err)
		}
	}
	return nil
}

// outsideWard reports whether fix lies outside the SAF's ward boundary.
// Wards without a boundary accept every fix.
func outsideWard(ctx context.Context, safID string, fix verification.Fix) bool {
	var saf models.SafApplication
	if err := config.DB.WithContext(ctx).Select("id", "ward_mstr_id").First(&saf, "id = ?", safID).Error; err != nil {
		return false
	}
	var ward models.Ward
	if err := config.DB.WithContext(ctx).First(&ward, saf.WardMstrID).Error; err != nil || len(ward.Boundary) == 0 {
		return false
	}
	boundary, err := utils.ParseBoundary(ward.Boundary)
	if err != nil {
		log.Printf("[GEOTAG] ward %d boundary: %v", ward.ID, err)
		return false
	}
	if utils.ContainsPoint(boundary, fix.Latitude, fix.Longitude) {
		return false
	}
	log.Printf("[GEOTAG] fix %.6f,%.6f is outside ward %s of saf %s", fix.Latitude, fix.Longitude, ward.WardNo, safID)
	return true
}

// captureRun is one request's worth of work on a capture session
type captureRun struct {
	state   captureState
	session *verification.Session
	objects map[verification.Side]string
	syncErr error
}

func restoreCapture(ctx context.Context, state captureState, p verification.Providers) (*captureRun, error) {
	run := &captureRun{state: state, objects: map[verification.Side]string{}}
	for side, name := range state.Objects {
		run.objects[side] = name
	}
	s, err := verification.RestoreSession(state.Session, p, verification.SessionConfig{
		OnChange: func(photos verification.PhotoMap) {
			run.syncErr = run.state.syncGeoTags(ctx, photos, run.objects)
		},
	})
	if err != nil {
		return nil, err
	}
	run.session = s
	return run, nil
}

func (run *captureRun) save(ctx context.Context) error {
	run.state.Session = run.session.Snapshot()
	run.state.Objects = map[verification.Side]string{}
	for side := range run.state.Session.Photos {
		run.state.Objects[side] = run.objects[side]
	}
	return Sessions.Put(ctx, captureKey(run.state.ID), run.state, config.App.SessionTTL)
}

func loadCaptureState(w http.ResponseWriter, r *http.Request) (captureState, bool) {
	var state captureState
	err := Sessions.Get(r.Context(), captureKey(mux.Vars(r)["id"]), &state)
	if errors.Is(err, sessionstore.ErrNotFound) || (err == nil && state.UserID != middleware.GetUserID(r)) {
		utils.WriteError(w, http.StatusNotFound, "capture session not found or expired")
		return state, false
	}
	if err != nil {
		log.Printf("[GEOTAG] load session: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load capture session")
		return state, false
	}
	return state, true
}

// finish persists the run and answers for the outcome of the session call
func (run *captureRun) finish(w http.ResponseWriter, r *http.Request, callErr error) {
	var denied *verification.PermissionDeniedError
	if errors.As(callErr, &denied) {
		run.state.Pending = denied
	} else if callErr == nil {
		run.state.Pending = nil
	}

	if err := run.save(r.Context()); err != nil {
		log.Printf("[GEOTAG] save session: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to save capture session")
		return
	}
	if run.syncErr != nil {
		log.Printf("[GEOTAG] persist geo tags: %v", run.syncErr)
		utils.WriteError(w, http.StatusInternalServerError, "failed to save geo tags")
		return
	}

	switch {
	case callErr == nil:
		utils.WriteSuccess(w, http.StatusOK, "", run.state.view(run.session))
	case denied != nil:
		utils.WriteErrorData(w, http.StatusForbidden, denied.Error(), denied)
	case errors.Is(callErr, verification.ErrSessionClosed):
		utils.WriteError(w, http.StatusConflict, callErr.Error())
	case errors.Is(callErr, verification.ErrLocationRequired),
		errors.Is(callErr, verification.ErrUnknownSide),
		errors.Is(callErr, verification.ErrUnknownChoice):
		utils.WriteError(w, http.StatusBadRequest, callErr.Error())
	case errors.Is(callErr, context.Canceled), errors.Is(callErr, context.DeadlineExceeded):
		log.Printf("[GEOTAG] request abandoned: %v", callErr)
		utils.WriteError(w, http.StatusRequestTimeout, "request cancelled")
	default:
		log.Printf("[GEOTAG] session %s: %v", run.state.ID, callErr)
		utils.WriteError(w, http.StatusInternalServerError, callErr.Error())
	}
}

// StartGeoTagSession godoc
// @Summary      Start a geo tag capture session for a SAF
// @Tags         geotag
// @Accept       json
// @Produce      json
// @Router       /api/property/geotag/session [post]
func StartGeoTagSession(w http.ResponseWriter, r *http.Request) {
	var req startCaptureRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var saf models.SafApplication
	if err := config.DB.WithContext(r.Context()).First(&saf, "id = ?", req.SafID).Error; err != nil {
		writeDBError(w, "application", err)
		return
	}
	isRwh := saf.IsWaterHarvesting
	if req.IsRwh != nil {
		isRwh = *req.IsRwh
	}

	session := verification.NewSession(verification.ProfileFor(isRwh), verification.Providers{}, verification.SessionConfig{})
	state := captureState{
		ID:      uuid.NewString(),
		SafID:   saf.ID.String(),
		UserID:  middleware.GetUserID(r),
		Session: session.Snapshot(),
		Objects: map[verification.Side]string{},
	}
	if err := Sessions.Put(r.Context(), captureKey(state.ID), state, config.App.SessionTTL); err != nil {
		log.Printf("[GEOTAG] save session: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to start capture session")
		return
	}
	log.Printf("[GEOTAG] session %s started for saf %s profile=%s", state.ID, state.SafID, session.Profile().Name())
	utils.WriteSuccess(w, http.StatusCreated, "", state.view(session))
}

// ReportGeoTagLocation feeds the device's permission answer and fix
func ReportGeoTagLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, ok := loadCaptureState(w, r)
	if !ok {
		return
	}
	run, err := restoreCapture(r.Context(), state, verification.Providers{
		Permissions: devicePermissions{granted: granted(req.Granted)},
		Location:    reportedLocation{req: req},
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	callErr := run.session.AcquireLocation(r.Context())
	if fix, ok := run.session.Fix(); ok && callErr == nil {
		run.state.OutsideWard = outsideWard(r.Context(), run.state.SafID, fix)
	}
	run.finish(w, r, callErr)
}

// ResolveGeoTagPermission answers a pending permission denial
func ResolveGeoTagPermission(w http.ResponseWriter, r *http.Request) {
	var req permissionChoiceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, ok := loadCaptureState(w, r)
	if !ok {
		return
	}
	if state.Pending == nil {
		utils.WriteError(w, http.StatusConflict, "no permission request is pending")
		return
	}

	var opened verification.PermissionKind
	run, err := restoreCapture(r.Context(), state, verification.Providers{
		Permissions: devicePermissions{granted: granted(req.Granted)},
		Location:    reportedLocation{req: req.locationRequest},
		Settings:    settingsRecorder{opened: &opened},
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	pending := state.Pending
	callErr := run.session.Resolve(r.Context(), pending, req.Choice)
	if opened != "" {
		w.Header().Set("X-Open-Settings", string(opened))
	}
	if fix, ok := run.session.Fix(); ok && callErr == nil && pending.Kind == verification.PermissionLocation {
		run.state.OutsideWard = outsideWard(r.Context(), run.state.SafID, fix)
	}
	run.finish(w, r, callErr)
}

// CaptureGeoTagPhoto stores the photo of one side. A request without a
// photo is a cancelled capture and leaves the session unchanged.
func CaptureGeoTagPhoto(w http.ResponseWriter, r *http.Request) {
	state, ok := loadCaptureState(w, r)
	if !ok {
		return
	}
	side := verification.Side(mux.Vars(r)["side"])

	cam := &uploadCamera{safID: state.SafID, side: side}
	grantedCamera := true
	if err := r.ParseMultipartForm(maxPhotoSize); err == nil {
		if v := r.FormValue("granted"); v != "" {
			grantedCamera, _ = strconv.ParseBool(v)
		}
		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			cam.file, cam.header = file, header
		}
	}

	run, err := restoreCapture(r.Context(), state, verification.Providers{
		Permissions: devicePermissions{granted: grantedCamera},
		Camera:      cam,
	})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	cam.objects = run.objects
	if cam.file == nil {
		log.Printf("[GEOTAG] capture of %s cancelled for session %s", side, state.ID)
	}
	run.finish(w, r, run.session.Capture(r.Context(), side))
}

// RemoveGeoTagPhoto clears one side
func RemoveGeoTagPhoto(w http.ResponseWriter, r *http.Request) {
	state, ok := loadCaptureState(w, r)
	if !ok {
		return
	}
	run, err := restoreCapture(r.Context(), state, verification.Providers{})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	side := verification.Side(mux.Vars(r)["side"])
	callErr := run.session.Remove(side)
	if callErr == nil {
		delete(run.objects, side)
	}
	run.finish(w, r, callErr)
}

// FinishGeoTagSession closes the session. Captured photos stay saved.
func FinishGeoTagSession(w http.ResponseWriter, r *http.Request) {
	state, ok := loadCaptureState(w, r)
	if !ok {
		return
	}
	run, err := restoreCapture(r.Context(), state, verification.Providers{})
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	run.session.Done()
	view := run.state.view(run.session)
	if err := Sessions.Delete(r.Context(), captureKey(state.ID)); err != nil {
		log.Printf("[GEOTAG] delete session: %v", err)
	}
	log.Printf("[GEOTAG] session %s closed complete=%t", state.ID, view.Complete)
	utils.WriteSuccess(w, http.StatusOK, "", view)
}
