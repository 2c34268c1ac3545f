package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/phamminhquan/stock-ledger/internal/config"
	"github.com/phamminhquan/stock-ledger/internal/http/apierr"
	"github.com/phamminhquan/stock-ledger/internal/http/metric"
	"github.com/phamminhquan/stock-ledger/internal/http/middleware"
	"github.com/phamminhquan/stock-ledger/internal/http/swagger"
	"github.com/phamminhquan/stock-ledger/internal/service"
	"github.com/phamminhquan/stock-ledger/internal/storage/db"
	"github.com/phamminhquan/stock-ledger/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	productSvc     service.ProductService
	transactionSvc service.TransactionService
	validate       validator.Validator
	health         db.HealthChecker
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	transactionSvc service.TransactionService,
	validate validator.Validator,
	health db.HealthChecker,
) *Service {
	return &Service{
		cfg:            cfg,
		logger:         log.With(slog.String("service", "http")),
		metrics:        metric.New(),
		productSvc:     productSvc,
		transactionSvc: transactionSvc,
		validate:       validate,
		health:         health,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r)
	}

	s.RegisterHandlers(r)

	return s.RunWithServer(ctx, r)
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	ph := newProductHandler(s.productSvc, s.validate)
	th := newTransactionHandler(s.transactionSvc, s.validate)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.wrap(ph.listProducts))
		r.Post("/", s.wrap(ph.createProduct))
		r.Get("/search", s.wrap(ph.searchProducts))
		r.Get("/price-range", s.wrap(ph.productsByPriceRange))
		r.Get("/in-stock", s.wrap(ph.inStockProducts))
		r.Get("/in-stock/count", s.wrap(ph.inStockCount))
		r.Get("/low-stock", s.wrap(ph.lowStockProducts))
		r.Get("/out-of-stock", s.wrap(ph.outOfStockProducts))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.wrap(ph.getProduct))
			r.Put("/", s.wrap(ph.updateProduct))
			r.Delete("/", s.wrap(ph.deleteProduct))
			r.Get("/available", s.wrap(ph.productAvailable))
		})
	})

	r.Route("/api/transactions", func(r chi.Router) {
		r.Get("/", s.wrap(th.listTransactions))
		r.Post("/", s.wrap(th.createTransaction))
		r.Post("/sale", s.wrap(th.createSale))
		r.Post("/purchase", s.wrap(th.createPurchase))
		r.Get("/recent", s.wrap(th.recentTransactions))
		r.Get("/date-range", s.wrap(th.transactionsByDateRange))
		r.Get("/total-sales", s.wrap(th.totalSales))
		r.Get("/total-purchases", s.wrap(th.totalPurchases))
		r.Get("/net-revenue", s.wrap(th.netRevenue))
		r.Get("/product/{productId}", s.wrap(th.transactionsByProduct))
		r.Get("/type/{type}", s.wrap(th.transactionsByType))
		r.Get("/count/{type}", s.wrap(th.transactionCountByType))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.wrap(th.getTransaction))
			r.Put("/", s.wrap(th.updateTransaction))
			r.Delete("/", s.wrap(th.deleteTransaction))
		})
	})

	r.Get("/healthz", s.handleHealthz)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// wrap adapts a handlerFunc to http.HandlerFunc with centralized error
// translation and logging.
func (s *Service) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.handleResponseError(w, r, err)
		}
	}
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if healthy, err := s.health.IsHealthy(r.Context()); err != nil || !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}
