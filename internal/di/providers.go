package di

import (
	"fmt"

	"volscan/internal/domain/repository"
	apihandler "volscan/internal/handler/api"
	"volscan/internal/handler/ws"
	internalrepo "volscan/internal/repository"
	"volscan/internal/service/bybit"
	icache "volscan/internal/service/cache"
	"volscan/internal/service/ratelimit"
	"volscan/internal/services/analytics"
	"volscan/internal/usecase"
	"volscan/pkg/config"
	xhttp "volscan/pkg/http"
	pkgkafka "volscan/pkg/kafka"
	xlogger "volscan/pkg/logger"
	"volscan/pkg/metrics"
	"volscan/pkg/server"

	"github.com/labstack/echo/v4"
)

// ProvideLogger creates the application logger with an attached collector
// backing the diagnostics endpoint.
func ProvideLogger(cfg *config.Config) (*xlogger.Logger, error) {
	l, err := xlogger.New(&xlogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	l.AddCollector(&xlogger.CollectionConfig{MaxEntries: 256})
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHistoryStore creates the in-memory rolling price history.
func ProvideHistoryStore() repository.HistoryStore {
	return internalrepo.NewPriceHistory()
}

// ProvideResultLog creates the result log backing the HTTP query surface.
func ProvideResultLog(cfg *config.Config) *internalrepo.ResultLog {
	return internalrepo.NewResultLog(cfg.Scanner.HistoryRetention)
}

// ProvideMarketSource creates the Bybit tickers client.
func ProvideMarketSource(cfg *config.Config) repository.MarketSource {
	return bybit.New(
		cfg.Bybit.BaseURL,
		cfg.Bybit.Category,
		cfg.Bybit.QuoteSuffix,
		cfg.Bybit.RequestTimeout,
	)
}

// ProvideEstimator creates the volatility estimator.
func ProvideEstimator(cfg *config.Config) *analytics.Estimator {
	return analytics.NewEstimator(cfg.Scanner.Window)
}

// ProvideSelector creates the performer selector.
func ProvideSelector(cfg *config.Config) *analytics.Selector {
	return analytics.NewSelector(cfg.Scanner.MinTurnover, cfg.Scanner.TieEpsilon)
}

// ProvideHub creates the WebSocket push hub.
func ProvideHub(l *xlogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideSinks assembles the delivery sinks. The result log and the hub are
// always present; Kafka is added when the backend selects it.
func ProvideSinks(cfg *config.Config, log *internalrepo.ResultLog, hub *ws.Hub) ([]repository.ResultSink, error) {
	sinks := []repository.ResultSink{log, hub}

	if cfg.Backend.Type == "kafka" {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic))
	}

	return sinks, nil
}

// ProvideDispatcher creates the result fan-out.
func ProvideDispatcher(m repository.Metrics, l *xlogger.Logger, sinks []repository.ResultSink) *usecase.ResultDispatcher {
	return usecase.NewResultDispatcher(m, l, sinks...)
}

// ProvideScanCycle creates the minute-cycle scanner driver.
func ProvideScanCycle(
	source repository.MarketSource,
	history repository.HistoryStore,
	estimator *analytics.Estimator,
	selector *analytics.Selector,
	dispatcher *usecase.ResultDispatcher,
	m repository.Metrics,
	l *xlogger.Logger,
	cfg *config.Config,
) *usecase.ScanCycle {
	return usecase.NewScanCycle(
		source,
		history,
		estimator,
		selector,
		dispatcher,
		m,
		l,
		bybit.ClassifyError,
		cfg.Scanner.Retention,
	)
}

// ProvideBytesCache picks Redis when enabled, in-process TTL cache otherwise.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideLimiter creates the per-client poll rate limiter.
func ProvideLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvidePerformerHandler creates the performer API handler.
func ProvidePerformerHandler(
	l *xlogger.Logger,
	log *internalrepo.ResultLog,
	c icache.BytesCache,
	limiter *ratelimit.Limiter,
) *apihandler.PerformerEchoHandler {
	return apihandler.NewPerformerEchoHandler(l, log, c, limiter)
}

// routeGroup lets one server mount several route providers.
type routeGroup struct {
	handlers []xhttp.Handler
}

func (g routeGroup) RegisterRoutes(e *echo.Echo) {
	for _, h := range g.handlers {
		h.RegisterRoutes(e)
	}
}

// ProvideHTTPHandler combines the API handler and the WS hub routes.
func ProvideHTTPHandler(api *apihandler.PerformerEchoHandler, hub *ws.Hub) xhttp.Handler {
	return routeGroup{handlers: []xhttp.Handler{api, hub}}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *xlogger.Logger,
	cycle *usecase.ScanCycle,
	dispatcher *usecase.ResultDispatcher,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, cycle, dispatcher, handler)
}
