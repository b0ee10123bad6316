package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julianoleite90/evemaster-finalizada-sub000/internal/telemetry"
)

// RouterDeps groups everything the HTTP surface needs.
type RouterDeps struct {
	Checkout    *CheckoutHandler
	Admin       *AdminHandler
	Metrics     *telemetry.Metrics
	Logger      *log.Logger
	CORSOrigins []string
}

// NewRouter mounts all routes and wraps them with CORS, request logging
// and request metrics.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	if deps.Metrics != nil {
		r.Use(func(next http.Handler) http.Handler {
			return instrument(next, deps.Metrics)
		})
	}
	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", HealthHandler)
	r.Handle("/metrics", telemetry.Handler())

	r.Route("/checkout/sessions", func(r chi.Router) {
		r.Post("/", deps.Checkout.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", deps.Checkout.GetSession)
			r.Patch("/participants/{index}", deps.Checkout.UpdateField)
			r.Put("/participants", deps.Checkout.ReplaceParticipants)
			r.Put("/payment-method", deps.Checkout.SetPaymentMethod)
			r.Post("/next", deps.Checkout.Next)
			r.Post("/back", deps.Checkout.Back)
			r.Get("/profiles", deps.Checkout.ListProfiles)
			r.Post("/profiles", deps.Checkout.AddFromProfile)
			r.Post("/offer/decline", deps.Checkout.DeclineOffer)
			r.Post("/submit", deps.Checkout.Submit)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/events", deps.Admin.ListEvents)
		r.Post("/events", deps.Admin.CreateEvent)
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/batches", deps.Admin.ListBatches)
			r.Post("/batches", deps.Admin.CreateBatch)
			r.Post("/clubs", deps.Admin.CreateClub)
		})
		r.Post("/batches/{batchID}/categories", deps.Admin.CreateCategory)
	})

	var handler http.Handler = r
	handler = RequestLogger(handler, deps.Logger)
	handler = CORS(deps.CORSOrigins, handler)
	return handler
}
