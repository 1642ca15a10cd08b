package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"
	"p9e.in/saf/docs"
	"p9e.in/saf/handlers"
	"p9e.in/saf/middleware"
	"p9e.in/saf/models"
)

// Options carries what the router needs from main
type Options struct {
	LoginLimiter *middleware.IPRateLimiter
	// UploadDir is served at /uploads/ when photos are stored on disk
	UploadDir string
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(opts Options) http.Handler {
	r := mux.NewRouter()

	// Public
	login := http.Handler(http.HandlerFunc(handlers.Login))
	if opts.LoginLimiter != nil {
		login = opts.LoginLimiter.Middleware(login)
	}
	r.Handle("/api/login", login).Methods(http.MethodPost)
	r.HandleFunc("/swagger/doc.json", swaggerDoc).Methods(http.MethodGet)
	if opts.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))),
		)
	}

	// Authenticated
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/logout", handlers.Logout).Methods(http.MethodPost)
	api.HandleFunc("/menu", handlers.Menu).Methods(http.MethodGet)
	api.HandleFunc("/get-workflow-permission", handlers.WorkflowPermission).Methods(http.MethodPost)

	registerPropertyRoutes(api.PathPrefix("/property").Subrouter())
	return r
}

func registerPropertyRoutes(p *mux.Router) {
	read := middleware.RequirePermission(models.PermSafRead)
	verify := middleware.RequirePermission(models.PermSafVerify)
	geotag := middleware.RequirePermission(models.PermGeotagCapture)
	masters := middleware.RequireAnyPermission(models.PermMasterRead, models.PermSafRead)

	handle := func(path string, mw func(http.Handler) http.Handler, h http.HandlerFunc, methods ...string) {
		p.Handle(path, mw(h)).Methods(methods...)
	}

	handle("/get-saf-master-data", masters, handlers.GetSafMasterData, http.MethodPost)
	handle("/get-new-ward-by-old", masters, handlers.GetNewWardByOld, http.MethodPost)
	handle("/get-apartment-by-old-ward", masters, handlers.GetApartmentByOldWard, http.MethodPost)

	handle("/inbox", read, handlers.Inbox, http.MethodPost)
	handle("/search-saf", read, handlers.SearchSaf, http.MethodPost)
	handle("/get-saf-dtl", read, handlers.GetSafDtl, http.MethodPost)

	handle("/get-saf-field-verification", verify, handlers.GetSafFieldVerification, http.MethodPost)
	handle("/field-verification-dtl", read, handlers.FieldVerificationDtl, http.MethodPost)
	handle("/field-verification-dtl/{id}/export", read, handlers.ExportFieldVerification, http.MethodGet)

	handle("/verification-draft", verify, handlers.CreateVerificationDraft, http.MethodPost)
	handle("/verification-draft/{id}", verify, handlers.GetVerificationDraft, http.MethodGet)
	handle("/verification-draft/{id}", verify, handlers.DeleteVerificationDraft, http.MethodDelete)
	handle("/verification-draft/{id}/field", verify, handlers.UpdateDraftField, http.MethodPost)

	handle("/geotag/session", geotag, handlers.StartGeoTagSession, http.MethodPost)
	handle("/geotag/session/{id}/location", geotag, handlers.ReportGeoTagLocation, http.MethodPost)
	handle("/geotag/session/{id}/permission", geotag, handlers.ResolveGeoTagPermission, http.MethodPost)
	handle("/geotag/session/{id}/photo/{side}", geotag, handlers.CaptureGeoTagPhoto, http.MethodPost)
	handle("/geotag/session/{id}/photo/{side}", geotag, handlers.RemoveGeoTagPhoto, http.MethodDelete)
	handle("/geotag/session/{id}/done", geotag, handlers.FinishGeoTagSession, http.MethodPost)

	handle("/payment-receipt", middleware.RequirePermission(models.PermReceiptRead), handlers.PaymentReceipt, http.MethodPost)
	handle("/memo-receipt", middleware.RequirePermission(models.PermMemoRead), handlers.MemoReceipt, http.MethodPost)
}

func swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}
