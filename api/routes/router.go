package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velumart/velumart-backend/api/controllers"
	"github.com/velumart/velumart-backend/api/middleware"
	"github.com/velumart/velumart-backend/internal/deliveries"
	"github.com/velumart/velumart-backend/internal/notifications"
	"github.com/velumart/velumart-backend/internal/orders"
	"github.com/velumart/velumart-backend/internal/procurement"
	"github.com/velumart/velumart-backend/pkg/config"
	"github.com/velumart/velumart-backend/pkg/db"
	"github.com/velumart/velumart-backend/pkg/logger"
	"github.com/velumart/velumart-backend/pkg/metrics"
	"github.com/velumart/velumart-backend/pkg/redis"
	"github.com/velumart/velumart-backend/pkg/storage"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	store *storage.Store,
	ordersSvc orders.Service,
	procurementSvc procurement.Service,
	deliveriesSvc deliveries.Service,
	notificationsSvc notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Proof images and product photos are served straight off disk.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(store.BaseDir()))))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, cfg.Workflow.IdempotencyTTL(), logg))

		r.Route("/order", func(r chi.Router) {
			r.Post("/create", controllers.CreateOrder(ordersSvc, logg))
			r.Get("/all", controllers.ListOrders(ordersSvc, logg))
			r.Get("/customer/{customerId}", controllers.ListCustomerOrders(ordersSvc, logg))
			r.Get("/{id}", controllers.GetOrder(ordersSvc, logg))
			r.Put("/update/{id}", controllers.UpdateOrder(ordersSvc, logg))
			r.Delete("/delete/{id}", controllers.DeleteOrder(ordersSvc, logg))
		})

		r.Route("/procurement", func(r chi.Router) {
			r.Post("/create", controllers.CreateProcurement(procurementSvc, store, cfg.Uploads, logg))
			r.Get("/all", controllers.ListProcurements(procurementSvc, logg))
			r.Get("/vendor/{id}", controllers.ListVendorNotifications(notificationsSvc, logg))
			r.Get("/{id}", controllers.GetProcurement(procurementSvc, logg))
			r.Put("/update/{id}", controllers.UpdateProcurement(procurementSvc, store, cfg.Uploads, logg))
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Post("/create", controllers.CreateDelivery(deliveriesSvc, logg))
			r.Get("/all", controllers.ListDeliveries(deliveriesSvc, logg))
			r.Get("/get-delivery/{id}", controllers.GetDeliveryByReference(deliveriesSvc, logg))
			r.Get("/{id}", controllers.GetDelivery(deliveriesSvc, logg))
			r.Put("/update/{id}", controllers.UpdateDelivery(deliveriesSvc, store, cfg.Uploads, logg))
			r.Put("/mark-delivered/{id}", controllers.MarkDelivered(deliveriesSvc, store, cfg.Uploads, logg))
			r.Put("/mark-completed/{id}", controllers.MarkCompleted(deliveriesSvc, store, cfg.Uploads, logg))
			r.Post("/mark-paid", controllers.MarkPaid(deliveriesSvc, logg))
			r.Delete("/delete/{id}", controllers.DeleteDelivery(deliveriesSvc, logg))
		})

		r.Route("/notification", func(r chi.Router) {
			r.Get("/all/{id}", controllers.ListCustomerNotifications(notificationsSvc, logg))
			r.Put("/mark-read/{id}", controllers.MarkNotificationRead(notificationsSvc, logg))
		})
		r.Get("/vendor-notification/all/{id}", controllers.ListVendorNotifications(notificationsSvc, logg))
		r.Get("/driver-notification/all/{id}", controllers.ListDriverNotifications(notificationsSvc, logg))
	})

	return r
}
