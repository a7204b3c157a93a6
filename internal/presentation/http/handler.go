package httppresentation

import (
	"context"
	"net/http"

	appaccount "github.com/Zhima-Mochi/fooddelivery/internal/application/account"
	appauth "github.com/Zhima-Mochi/fooddelivery/internal/application/auth"
	appcatalog "github.com/Zhima-Mochi/fooddelivery/internal/application/catalog"
	apporder "github.com/Zhima-Mochi/fooddelivery/internal/application/order"
	"github.com/Zhima-Mochi/fooddelivery/internal/infrastructure/authz"
	"github.com/Zhima-Mochi/fooddelivery/internal/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	componentHTTPHandler = "http_server"
	maxImageBytes        = 5 << 20
)

type Services struct {
	Auth     *appauth.Service
	Accounts *appaccount.Service
	Catalog  *appcatalog.Service
	Orders   *apporder.Service
	Authz    Authorizer
}

type Handler struct {
	svc     Services
	log     observability.Logger
	tel     observability.Observability
	metrics http.Handler
	ready   func(ctx context.Context) error
}

type Option func(*Handler)

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(x *Handler) { x.metrics = h }
}

// WithReadiness makes /health report 503 while check fails.
func WithReadiness(check func(ctx context.Context) error) Option {
	return func(x *Handler) { x.ready = check }
}

func NewHandler(svc Services, logger observability.Logger, tel observability.Observability, opts ...Option) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if logger == nil {
		logger = tel.Logger()
	}
	h := &Handler{
		svc: svc,
		log: logger.With(observability.F("component", componentHTTPHandler)),
		tel: tel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router wires: otelhttp server span -> recoverer -> request logger, metrics
// and access log -> auth -> permission -> handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(ObservabilityMiddleware(h.log, h.tel))

	r.Get("/health", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	authn := Authenticate(h.svc.Auth)
	can := func(resource, action string) func(http.Handler) http.Handler {
		return RequirePermission(h.svc.Authz, resource, action)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", h.handleGrantToken)
		r.Post("/customers", h.handleRegisterCustomer)
		r.Post("/partners", h.handleRegisterPartner)

		r.Get("/stores", h.handleListStores)
		r.Get("/stores/{id}", h.handleGetStore)
		r.Get("/products", h.handleListProducts)
		r.Get("/products/{id}", h.handleGetProduct)

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Delete("/auth/token", h.handleRevokeToken)
			r.With(can(authz.ResourceProfile, authz.ActionRead)).Get("/auth/profile", h.handleGetProfile)
			r.With(can(authz.ResourceProfile, authz.ActionWrite)).Put("/auth/profile", h.handleUpdateProfile)
			r.With(can(authz.ResourceProfile, authz.ActionWrite)).Put("/auth/password", h.handleChangePassword)
			r.With(can(authz.ResourceProfile, authz.ActionWrite)).Put("/auth/image", h.handleUploadProfileImage)
			r.With(can(authz.ResourceProfile, authz.ActionWrite)).Delete("/auth/image", h.handleRemoveProfileImage)

			r.With(can(authz.ResourceCustomers, authz.ActionRead)).Get("/customers", h.handleListCustomers)
			r.With(can(authz.ResourceCustomers, authz.ActionRead)).Get("/customers/{id}", h.handleGetCustomer)
			r.With(can(authz.ResourceCustomers, authz.ActionWrite)).Put("/customers/{id}", h.handleUpdateCustomer)
			r.With(can(authz.ResourceCustomers, authz.ActionDelete)).Delete("/customers/{id}", h.handleDeleteCustomer)

			r.With(can(authz.ResourcePartners, authz.ActionRead)).Get("/partners", h.handleListPartners)
			r.With(can(authz.ResourcePartners, authz.ActionRead)).Get("/partners/{id}", h.handleGetPartner)
			r.With(can(authz.ResourcePartners, authz.ActionWrite)).Put("/partners/{id}", h.handleUpdatePartner)
			r.With(can(authz.ResourcePartners, authz.ActionDelete)).Delete("/partners/{id}", h.handleDeletePartner)
			r.With(can(authz.ResourcePartners, authz.ActionVerify)).Put("/partners/{id}/status", h.handleVerifyPartner)

			r.With(can(authz.ResourceAdmins, authz.ActionWrite)).Put("/admins/{id}", h.handleUpdateAdmin)

			r.With(can(authz.ResourceStores, authz.ActionWrite)).Post("/stores", h.handleCreateStore)
			r.With(can(authz.ResourceStores, authz.ActionWrite)).Put("/stores/{id}", h.handleUpdateStore)
			r.With(can(authz.ResourceStores, authz.ActionWrite)).Put("/stores/{id}/image", h.handleUploadStoreImage)
			r.With(can(authz.ResourceStores, authz.ActionDelete)).Delete("/stores/{id}", h.handleDeleteStore)

			r.With(can(authz.ResourceProducts, authz.ActionWrite)).Post("/products", h.handleCreateProduct)
			r.With(can(authz.ResourceProducts, authz.ActionWrite)).Put("/products/{id}", h.handleUpdateProduct)
			r.With(can(authz.ResourceProducts, authz.ActionWrite)).Put("/products/{id}/image", h.handleUploadProductImage)
			r.With(can(authz.ResourceProducts, authz.ActionDelete)).Delete("/products/{id}", h.handleDeleteProduct)

			r.With(can(authz.ResourceOrders, authz.ActionRead)).Get("/orders", h.handleListOrders)
			r.With(can(authz.ResourceOrders, authz.ActionRead)).Get("/orders/{id}", h.handleGetOrder)
			r.With(can(authz.ResourceOrders, authz.ActionCreate)).Post("/orders", h.handleCreateOrder)
			r.With(can(authz.ResourceOrders, authz.ActionCheckout)).Post("/orders/checkout", h.handleCheckout)
			r.With(can(authz.ResourceOrders, authz.ActionCancel)).Delete("/orders/{id}", h.handleCancelOrder)
			r.With(can(authz.ResourceOrders, authz.ActionRefund)).Post("/orders/{id}/refund", h.handleRefundOrder)
		})
	})

	return otelhttp.NewHandler(r, "fooddelivery.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
