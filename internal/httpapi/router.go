package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/spicecart/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"time"
)

type RouterParams struct {
	Sessions *Sessions
	Logger   *logger.Logger
	// Gatherer backs /metrics; nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

func NewRouter(params RouterParams) http.Handler {
	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	h := &handlers{sessions: params.Sessions, log: log, now: now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Get("/checkout", h.checkout)
		r.Post("/items", h.addItem)
		r.Patch("/items/{id}", h.updateQuantity)
		r.Delete("/items/{id}", h.removeItem)
	})

	return r
}
