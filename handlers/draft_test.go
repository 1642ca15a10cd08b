package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"p9e.in/saf/pkg/verification"
)

func draftField(v DraftView, name string) (FieldDraftView, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDraftView{}, false
}

func editDraft(t *testing.T, db *gorm.DB, phone, id string, edit fieldEditRequest) (int, DraftView) {
	t.Helper()
	req := newRequest(t, db, phone, http.MethodPost, "/x", edit, map[string]string{"id": id})
	rec, env := serve(t, UpdateDraftField, req)
	var view DraftView
	if rec.Code == http.StatusOK {
		decodeData(t, env, &view)
	}
	return rec.Code, view
}

func TestVerificationDraftFlow(t *testing.T) {
	db := setup(t)
	saf := demoSaf(t, db)

	req := newRequest(t, db, phoneAgencyTC, http.MethodPost, "/x", createDraftRequest{SafID: saf.ID.String()}, nil)
	rec, env := serve(t, CreateVerificationDraft, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var draft DraftView
	decodeData(t, env, &draft)
	require.NotEmpty(t, draft.ID)
	assert.Equal(t, saf.ID.String(), draft.SafID)
	assert.Contains(t, draft.MissingRequired, verification.FieldWard)
	assert.NotEmpty(t, draft.Preview)

	ward, ok := draftField(draft, verification.FieldWard)
	require.True(t, ok)
	assert.Empty(t, ward.Status)
	assert.Empty(t, ward.Editor)

	code, view := editDraft(t, db, phoneAgencyTC, draft.ID, fieldEditRequest{Name: verification.FieldWard, Action: "status", Status: verification.StatusCorrect})
	require.Equal(t, http.StatusOK, code)
	ward, _ = draftField(view, verification.FieldWard)
	assert.Equal(t, verification.StatusCorrect, ward.Status)
	assert.Equal(t, "1", ward.DisplayValue)
	assert.NotContains(t, view.MissingRequired, verification.FieldWard)

	code, _ = editDraft(t, db, phoneAgencyTC, draft.ID, fieldEditRequest{Name: verification.FieldWard, Action: "option", Value: 2})
	assert.Equal(t, http.StatusBadRequest, code, "editor stays locked while the field is Correct")

	code, view = editDraft(t, db, phoneAgencyTC, draft.ID, fieldEditRequest{Name: verification.FieldZone, Action: "status", Status: verification.StatusIncorrect})
	require.Equal(t, http.StatusOK, code)
	zone, _ := draftField(view, verification.FieldZone)
	assert.Equal(t, verification.FieldSelect, zone.Editor)

	code, _ = editDraft(t, db, phoneAgencyTC, draft.ID, fieldEditRequest{Name: verification.FieldZone, Action: "option", Value: 9})
	assert.Equal(t, http.StatusBadRequest, code)

	code, view = editDraft(t, db, phoneAgencyTC, draft.ID, fieldEditRequest{Name: verification.FieldZone, Action: "option", Value: 2})
	require.Equal(t, http.StatusOK, code)
	zone, _ = draftField(view, verification.FieldZone)
	assert.Equal(t, "2", zone.DisplayValue)

	property, ok := findSection(view.Preview, verification.SectionProperty)
	require.True(t, ok)
	row, ok := findRow(property, "Zone")
	require.True(t, ok)
	assert.Equal(t, "Zone 2", row.Verified)

	code, _ = editDraft(t, db, phoneAgencyTC, draft.ID, fieldEditRequest{Name: "nope", Action: "clear"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = editDraft(t, db, phoneAgencyTC, draft.ID, fieldEditRequest{Name: verification.FieldZone, Action: "shout"})
	assert.Equal(t, http.StatusBadRequest, code)

	// state survives a reload
	rec, env = serve(t, GetVerificationDraft, newRequest(t, db, phoneAgencyTC, http.MethodGet, "/x", nil, map[string]string{"id": draft.ID}))
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &view)
	zone, _ = draftField(view, verification.FieldZone)
	assert.Equal(t, verification.StatusIncorrect, zone.Status)
	assert.Equal(t, "2", zone.DisplayValue)

	rec, _ = serve(t, DeleteVerificationDraft, newRequest(t, db, phoneAgencyTC, http.MethodDelete, "/x", nil, map[string]string{"id": draft.ID}))
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = serve(t, GetVerificationDraft, newRequest(t, db, phoneAgencyTC, http.MethodGet, "/x", nil, map[string]string{"id": draft.ID}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerificationDraftBelongsToCreator(t *testing.T) {
	db := setup(t)
	saf := demoSaf(t, db)

	req := newRequest(t, db, phoneAgencyTC, http.MethodPost, "/x", createDraftRequest{SafID: saf.ID.String()}, nil)
	rec, env := serve(t, CreateVerificationDraft, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	var draft DraftView
	decodeData(t, env, &draft)

	rec, _ = serve(t, GetVerificationDraft, newRequest(t, db, phoneULBTC, http.MethodGet, "/x", nil, map[string]string{"id": draft.ID}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateVerificationDraftUnknownSaf(t *testing.T) {
	db := setup(t)
	req := newRequest(t, db, phoneAgencyTC, http.MethodPost, "/x", createDraftRequest{SafID: "7f1a4c3e-0000-4000-8000-000000000000"}, nil)
	rec, _ := serve(t, CreateVerificationDraft, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
