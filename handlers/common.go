package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/saf/pkg/photostore"
	"p9e.in/saf/pkg/sessionstore"
	"p9e.in/saf/utils"
)

// Stores wired by main before the routes serve traffic
var (
	Sessions sessionstore.Store = sessionstore.NewMemory()
	Photos   photostore.Store
)

// idRequest is the body of most property lookups
type idRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type pageRequest struct {
	Page    int `json:"page" validate:"omitempty,min=1"`
	PerPage int `json:"perPage" validate:"omitempty,min=1,max=100"`
}

func (p pageRequest) normalized() (page, perPage int) {
	page, perPage = p.Page, p.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	return page, perPage
}

// Page is a paginated listing
type Page struct {
	Data        any   `json:"data"`
	CurrentPage int   `json:"currentPage"`
	LastPage    int   `json:"lastPage"`
	PerPage     int   `json:"perPage"`
	Total       int64 `json:"total"`
}

func newPage(data any, page, perPage int, total int64) Page {
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return Page{Data: data, CurrentPage: page, LastPage: last, PerPage: perPage, Total: total}
}

// writeDBError answers 404 for a missing row and 500 for anything else
func writeDBError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusNotFound, what+" not found")
		return
	}
	log.Printf("[DB] %s: %v", what, err)
	utils.WriteError(w, http.StatusInternalServerError, "failed to load "+what)
}

func parseUUID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	return id, err == nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
