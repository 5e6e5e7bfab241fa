package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/domain/repository"
	dservice "MarketPulse/internal/domain/service"
	"MarketPulse/internal/handler/api"
	mid "MarketPulse/internal/middleware"
	internalrepo "MarketPulse/internal/repository"
	"MarketPulse/internal/service/ratelimit"
	"MarketPulse/internal/services/signals"
	"MarketPulse/internal/stream"
	"MarketPulse/internal/usecase"
	"MarketPulse/pkg/cache"
	pkgch "MarketPulse/pkg/clickhouse"
	"MarketPulse/pkg/config"
	xhttp "MarketPulse/pkg/http"
	pkgkafka "MarketPulse/pkg/kafka"
	applogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/metrics"
	"MarketPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideBarRepository creates the bar history repository and its schema, or
// nil when ClickHouse is disabled.
func ProvideBarRepository(chClient *pkgch.Client) (*internalrepo.BarRepository, error) {
	if chClient == nil {
		return nil, nil
	}
	repo := internalrepo.NewBarRepository(chClient)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return repo, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the tap is off.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Tap.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideTapPipeline builds publisher and pipeline, or nil when the tap is off.
func ProvideTapPipeline(cfg *config.Config, producer *pkgkafka.Producer, m repository.Metrics) *mid.TapPipeline {
	if producer == nil {
		return nil
	}
	publisher := internalrepo.NewMarketDataPublisher(producer, cfg.Tap.TopicPrefix)
	return mid.NewTapPipeline(publisher, m,
		mid.WithMaxRPS(cfg.Tap.MaxRPS),
		mid.WithBufferSize(cfg.Tap.BufferSize),
	)
}

// ProvideTransport selects the provider transport by configuration.
func ProvideTransport(cfg *config.Config) repository.Transport {
	if cfg.Provider.Transport == "polling" {
		return stream.NewPollTransport(
			cfg.Provider.RESTBaseURL,
			cfg.Provider.APIKey,
			cfg.Provider.PollInterval,
			xhttp.NewClient(xhttp.WithTimeout(cfg.Provider.PollInterval)),
		)
	}
	return stream.NewWSTransport(
		cfg.Provider.WebSocketURL,
		cfg.Provider.APIKey,
		cfg.Provider.HandshakeTimeout,
	)
}

// ProvideBus creates the event bus.
func ProvideBus() *stream.Bus { return stream.NewBus() }

// ProvideDataCache creates the last-value market data cache.
func ProvideDataCache() *stream.Cache { return stream.NewCache() }

// ProvideRegistry creates the subscription registry.
func ProvideRegistry() *stream.Registry { return stream.NewRegistry() }

// ProvideStreamClient creates the connection manager.
func ProvideStreamClient(
	cfg *config.Config,
	transport repository.Transport,
	bus *stream.Bus,
	dataCache *stream.Cache,
	registry *stream.Registry,
	m repository.Metrics,
	log *applogger.Logger,
	pipeline *mid.TapPipeline,
) *stream.Client {
	clientCfg := stream.ClientConfig{
		ConnectTimeout:       cfg.Provider.ConnectTimeout,
		HeartbeatInterval:    cfg.Provider.HeartbeatInterval,
		ReconnectBase:        cfg.Provider.ReconnectBase,
		ReconnectMax:         cfg.Provider.ReconnectMax,
		MaxReconnectAttempts: cfg.Provider.MaxReconnectAttempts,
		ConfirmTimeout:       cfg.Provider.ConfirmTimeout,
		HealthMaxSilence:     cfg.Provider.HealthMaxSilence,
	}
	var opts []stream.ClientOption
	if pipeline != nil {
		opts = append(opts, stream.WithSink(pipeline))
	}
	return stream.NewClient(transport, bus, dataCache, registry, m, log, clientCfg, opts...)
}

// ProvideAnalyticsService creates the HTTP analytics providers.
func ProvideAnalyticsService(cfg *config.Config) *signals.AnalyticsService {
	base := signals.NewHTTPServiceBase(cfg.Analytics.BaseURL, cfg.Analytics.Timeout)
	return signals.NewAnalyticsService(base)
}

// ProvideScorer selects the technical scoring strategy.
func ProvideScorer(cfg *config.Config) dservice.Scorer {
	linear := signals.NewLinearScorer()
	if cfg.Analytics.Scorer == "stochastic" {
		return signals.NewStochasticScorer(linear, cfg.Analytics.ScorerJitter, cfg.Analytics.ScorerSeed)
	}
	return linear
}

// ProvideBarStore picks local ClickHouse history when available, HTTP history
// otherwise.
func ProvideBarStore(barRepo *internalrepo.BarRepository, analytics *signals.AnalyticsService) repository.BarStore {
	if barRepo != nil {
		return barRepo
	}
	return analytics
}

// ProvideSignalCache selects the provider-response cache backend.
func ProvideSignalCache(cfg *config.Config, log *applogger.Logger) cache.Service {
	if cfg.Signals.Redis.Enabled {
		host, port := splitAddr(cfg.Signals.Redis.Addr)
		redisCache, err := cache.NewRedisCache(
			cache.WithRedisHost(host),
			cache.WithRedisPort(port),
			cache.WithRedisPassword(cfg.Signals.Redis.Password),
			cache.WithRedisDB(cfg.Signals.Redis.DB),
			cache.WithRedisPrefix("marketpulse:signals"),
		)
		if err == nil {
			return cache.NewLayeredCache(redisCache, cache.WithLayeredMemorySize(512))
		}
		log.Warn("redis unavailable, falling back to memory cache", applogger.Error(err))
	}
	return cache.NewMemoryCache(cache.WithMemoryCleanup(time.Minute))
}

// ProvideSignalUsecase builds the generators, the ensemble, and the usecase.
func ProvideSignalUsecase(
	cfg *config.Config,
	analytics *signals.AnalyticsService,
	scorer dservice.Scorer,
	bars repository.BarStore,
	cacheSvc cache.Service,
	m repository.Metrics,
	log *applogger.Logger,
) (*usecase.SignalUsecase, error) {
	freq := models.Frequency(cfg.Signals.HistoryFreq)

	technical := signals.NewTechnicalGenerator(analytics, scorer)
	sentiment := signals.NewSentimentGenerator(analytics)
	momentum := signals.NewMomentumGenerator(bars, freq)
	meanRev := signals.NewMeanReversionGenerator(bars, freq)
	breakout := signals.NewBreakoutGenerator(bars, freq)

	ensemble, err := signals.NewEnsemble(technical, sentiment, momentum, meanRev)
	if err != nil {
		return nil, err
	}
	return usecase.NewSignalUsecase(ensemble, cacheSvc, cfg.Signals.CacheTTL, m, log,
		technical, sentiment, momentum, meanRev, breakout), nil
}

// ProvideBarRecorder persists streamed bars when local history is enabled.
func ProvideBarRecorder(
	cfg *config.Config,
	bus *stream.Bus,
	barRepo *internalrepo.BarRepository,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.BarRecorder {
	if barRepo == nil {
		return nil
	}
	return usecase.NewBarRecorder(bus, barRepo,
		models.Frequency(cfg.ClickHouse.BarFrequency), m, log)
}

// ProvideStreamUsecase creates the streaming facade.
func ProvideStreamUsecase(
	client *stream.Client,
	pipeline *mid.TapPipeline,
	recorder *usecase.BarRecorder,
	bars repository.BarStore,
	log *applogger.Logger,
) *usecase.StreamUsecase {
	return usecase.NewStreamUsecase(client, pipeline, recorder, bars, log)
}

// ProvideRateLimiter creates the token-bucket limiter for mutating endpoints.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideHTTPHandler registers all API handlers as one.
func ProvideHTTPHandler(
	log *applogger.Logger,
	streams *usecase.StreamUsecase,
	sigs *usecase.SignalUsecase,
	limiter *ratelimit.Limiter,
) xhttp.Handler {
	return xhttp.Handlers{
		api.NewStreamEchoHandler(log, streams, limiter),
		api.NewMarketEchoHandler(log, streams),
		api.NewSignalsEchoHandler(log, sigs),
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	streams *usecase.StreamUsecase,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	cacheSvc cache.Service,
) *server.App {
	app := server.New(cfg, log, streams, handler, chClient)
	app.AddCloser(cacheSvc.Close)
	if producer != nil {
		// Aggregated error logs ride the same producer as the data tap.
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Tap.TopicPrefix + ".logs",
			Publisher:      internalrepo.NewMarketDataPublisher(producer, cfg.Tap.TopicPrefix),
		})
		app.AddCloser(func() error {
			log.RemoveCollector()
			return nil
		})
		app.AddCloser(producer.Close)
	}
	return app
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return host, 6379
	}
	return host, port
}
