package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/saf/config"
	"p9e.in/saf/middleware"
	"p9e.in/saf/models"
	"p9e.in/saf/pkg/sessionstore"
	"p9e.in/saf/pkg/verification"
	"p9e.in/saf/utils"
)

// draftState is what the session store keeps between edits
type draftState struct {
	ID        string                            `json:"id"`
	SafID     string                            `json:"safId"`
	UserID    string                            `json:"userId"`
	Values    map[string]any                    `json:"values"`
	Cards     map[string]verification.CardState `json:"cards"`
	CreatedAt time.Time                         `json:"createdAt"`
}

// FieldDraftView is a field card with its current edit state
type FieldDraftView struct {
	FieldView
	Status       verification.Status    `json:"status,omitempty"`
	Value        any                    `json:"value,omitempty"`
	DisplayValue string                 `json:"displayValue"`
	Editor       verification.FieldType `json:"editor,omitempty"`
}

// DraftView is the draft as the app renders it
type DraftView struct {
	ID              string                 `json:"id"`
	SafID           string                 `json:"safId"`
	Fields          []FieldDraftView       `json:"fields"`
	MissingRequired []string               `json:"missingRequired"`
	Preview         []verification.Section `json:"preview"`
	Gaps            []verification.Gap     `json:"gaps"`
}

type createDraftRequest struct {
	SafID string `json:"safId" validate:"required,uuid"`
}

type fieldEditRequest struct {
	Name   string              `json:"name" validate:"required"`
	Action string              `json:"action" validate:"required,oneof=status input date option clear"`
	Status verification.Status `json:"status"`
	Value  any                 `json:"value"`
	Date   string              `json:"date"`
}

func draftKey(id string) string { return sessionstore.Key("draft", id) }

// draftSession is a loaded draft with its cards bound
type draftSession struct {
	state draftState
	decl  verification.DeclaredRecord
	m     verification.MasterData
	draft *verification.Draft
	cards []*verification.FieldCard
}

func openDraft(ctx context.Context, state draftState) (*draftSession, error) {
	saf, err := loadSaf(config.DB.WithContext(ctx), state.SafID)
	if err != nil {
		return nil, err
	}
	opts, err := LoadMasterOptions(config.DB.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	ds := &draftSession{state: state, decl: saf.Declared(), m: opts.MasterData()}
	ds.draft = verification.DraftFrom(state.Values)
	ds.cards = ds.draft.Bind(verification.FieldSpecs(ds.decl, ds.m), state.Cards)
	return ds, nil
}

func (ds *draftSession) save(ctx context.Context) error {
	ds.state.Values = ds.draft.Values()
	ds.state.Cards = verification.CardStates(ds.cards)
	return Sessions.Put(ctx, draftKey(ds.state.ID), ds.state, config.App.SessionTTL)
}

func (ds *draftSession) view(ctx context.Context, role string) (DraftView, error) {
	fields := make([]FieldDraftView, 0, len(ds.cards))
	for _, c := range ds.cards {
		fields = append(fields, FieldDraftView{
			FieldView:    FieldView{FieldSpec: c.Spec(), AllowedStatuses: c.AllowedStatuses()},
			Status:       c.Status(),
			Value:        c.Value(),
			DisplayValue: c.DisplayValue(),
			Editor:       c.Editor(),
		})
	}

	var rows []models.GeoTag
	if err := config.DB.WithContext(ctx).Where("saf_id = ?", ds.state.SafID).Order("captured_at").Find(&rows).Error; err != nil {
		return DraftView{}, err
	}
	tags := make([]verification.GeoTag, 0, len(rows))
	for _, g := range rows {
		tags = append(tags, g.Tag())
	}

	res := verification.Build(verification.Input{
		Declared:     ds.decl,
		Verified:     verification.Preview(ds.decl, ds.cards, ds.draft),
		Master:       ds.m,
		VerifierRole: role,
		GeoTags:      tags,
	})
	missing := verification.MissingRequired(ds.cards)
	if missing == nil {
		missing = []string{}
	}
	return DraftView{
		ID:              ds.state.ID,
		SafID:           ds.state.SafID,
		Fields:          fields,
		MissingRequired: missing,
		Preview:         res.Sections,
		Gaps:            res.Gaps,
	}, nil
}

// loadDraftState reads the draft named in the path and checks its owner
func loadDraftState(w http.ResponseWriter, r *http.Request) (draftState, bool) {
	var state draftState
	err := Sessions.Get(r.Context(), draftKey(mux.Vars(r)["id"]), &state)
	if errors.Is(err, sessionstore.ErrNotFound) || (err == nil && state.UserID != middleware.GetUserID(r)) {
		utils.WriteError(w, http.StatusNotFound, "draft not found or expired")
		return state, false
	}
	if err != nil {
		log.Printf("[VERIFY] load draft: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load draft")
		return state, false
	}
	return state, true
}

func writeDraft(w http.ResponseWriter, r *http.Request, ds *draftSession, code int) {
	view, err := ds.view(r.Context(), middleware.GetRole(r))
	if err != nil {
		writeDBError(w, "geo tags", err)
		return
	}
	utils.WriteSuccess(w, code, "", view)
}

// CreateVerificationDraft godoc
// @Summary      Start a field verification draft
// @Tags         verification
// @Accept       json
// @Produce      json
// @Router       /api/property/verification-draft [post]
func CreateVerificationDraft(w http.ResponseWriter, r *http.Request) {
	var req createDraftRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	state := draftState{
		ID:        uuid.NewString(),
		SafID:     req.SafID,
		UserID:    middleware.GetUserID(r),
		Values:    map[string]any{},
		Cards:     map[string]verification.CardState{},
		CreatedAt: time.Now(),
	}
	ds, err := openDraft(r.Context(), state)
	if err != nil {
		writeDBError(w, "application", err)
		return
	}
	if err := ds.save(r.Context()); err != nil {
		log.Printf("[VERIFY] save draft: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to save draft")
		return
	}
	writeDraft(w, r, ds, http.StatusCreated)
}

// GetVerificationDraft returns the draft with its preview comparison
func GetVerificationDraft(w http.ResponseWriter, r *http.Request) {
	state, ok := loadDraftState(w, r)
	if !ok {
		return
	}
	ds, err := openDraft(r.Context(), state)
	if err != nil {
		writeDBError(w, "application", err)
		return
	}
	writeDraft(w, r, ds, http.StatusOK)
}

// DeleteVerificationDraft discards the draft
func DeleteVerificationDraft(w http.ResponseWriter, r *http.Request) {
	state, ok := loadDraftState(w, r)
	if !ok {
		return
	}
	if err := Sessions.Delete(r.Context(), draftKey(state.ID)); err != nil {
		log.Printf("[VERIFY] delete draft: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to discard draft")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "draft discarded", nil)
}

// UpdateDraftField applies one card interaction to the draft
func UpdateDraftField(w http.ResponseWriter, r *http.Request) {
	var req fieldEditRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, ok := loadDraftState(w, r)
	if !ok {
		return
	}
	ds, err := openDraft(r.Context(), state)
	if err != nil {
		writeDBError(w, "application", err)
		return
	}
	card := verification.FindCard(ds.cards, req.Name)
	if card == nil {
		utils.WriteError(w, http.StatusNotFound, "unknown field "+req.Name)
		return
	}

	if err := applyEdit(card, req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ds.save(r.Context()); err != nil {
		log.Printf("[VERIFY] save draft: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to save draft")
		return
	}
	writeDraft(w, r, ds, http.StatusOK)
}

func applyEdit(card *verification.FieldCard, req fieldEditRequest) error {
	switch req.Action {
	case "status":
		return card.SelectStatus(req.Status)
	case "input":
		text, ok := req.Value.(string)
		if !ok && req.Value != nil {
			text = fmt.Sprint(req.Value)
		}
		return card.Input(text)
	case "date":
		t, ok := verification.ParseDate(req.Date)
		if !ok {
			return errors.New("date is not a valid date")
		}
		return card.PickDate(t)
	case "option":
		return card.PickOption(req.Value)
	case "clear":
		card.Clear()
		return nil
	}
	return errors.New("unknown action " + req.Action)
}
