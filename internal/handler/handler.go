// Package handler exposes the HTTP API: catalog reads, campaign management,
// and cart quoting.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/smartcycle/discounts/internal/domain/campaign"
	"github.com/smartcycle/discounts/internal/domain/product"
)

// Invalidator drops cached scope-selection results after catalog or campaign
// mutations.
type Invalidator interface {
	Invalidate()
}

// Handler holds the HTTP endpoints and their domain dependencies.
type Handler struct {
	products  product.Repository
	campaigns campaign.Repository
	selector  *campaign.Selector
	pricer    *campaign.Pricer
	cache     Invalidator
	lg        *zap.Logger

	quoteCounter metric.Int64Counter
}

// NewHandler constructs a Handler with the required domain dependencies.
// meter may be nil, in which case quote metrics are disabled.
func NewHandler(
	products product.Repository,
	campaigns campaign.Repository,
	selector *campaign.Selector,
	pricer *campaign.Pricer,
	cache Invalidator,
	meter metric.Meter,
	lg *zap.Logger,
) (*Handler, error) {
	h := &Handler{
		products:  products,
		campaigns: campaigns,
		selector:  selector,
		pricer:    pricer,
		cache:     cache,
		lg:        lg,
	}

	if meter != nil {
		counter, err := meter.Int64Counter("quotes_total",
			metric.WithDescription("Number of cart quote requests processed"))
		if err != nil {
			return nil, err
		}
		h.quoteCounter = counter
	}
	return h, nil
}

// Router builds the chi router for the API, mounted under /api.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.lg))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)

		r.Post("/quote", h.quote)

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", h.createCampaign)
			r.Get("/", h.listCampaigns)
			r.Get("/{id}", h.getCampaign)
			r.Put("/{id}/status", h.updateCampaignStatus)
			r.Get("/{id}/scope", h.campaignScope)
		})
	})

	return r
}

// requestLogger logs one line per request with method, path, status, and
// duration, tagged with the chi request id.
func requestLogger(lg *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t0 := time.Now()
			next.ServeHTTP(ww, r)

			lg.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(t0)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
