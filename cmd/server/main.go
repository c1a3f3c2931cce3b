package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/technosupport/ts-shopguard/internal/api"
	"github.com/technosupport/ts-shopguard/internal/auth"
	"github.com/technosupport/ts-shopguard/internal/camera"
	"github.com/technosupport/ts-shopguard/internal/config"
	"github.com/technosupport/ts-shopguard/internal/events"
	"github.com/technosupport/ts-shopguard/internal/middleware"
	"github.com/technosupport/ts-shopguard/internal/notify"
	"github.com/technosupport/ts-shopguard/internal/ratelimit"
	"github.com/technosupport/ts-shopguard/internal/recording"
	"github.com/technosupport/ts-shopguard/internal/surveillance"
	"github.com/technosupport/ts-shopguard/internal/tokens"
	"github.com/technosupport/ts-shopguard/internal/users"
)

const serviceName = "shopguard"

func main() {
	cfgPath := flag.String("config", "config/default.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Config load error: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Printf("[WARN] No JWT secret configured, using development default")
		cfg.Auth.JWTSecret = "dev-secret-do-not-use-in-prod"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokenMgr := tokens.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Redis backs sessions, the recording index and login throttling. The
	// service degrades to in-memory stores when it is not configured.
	var (
		blacklist auth.TokenBlacklist = auth.NewMemoryBlacklist()
		userStore users.Store         = users.NewMemoryStore()
		recSink   recording.Sink      = recording.NewMemorySink()
		limiter   *ratelimit.Limiter
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[WARN] Redis unavailable (%v), using in-memory stores", err)
		} else {
			blacklist = auth.NewRedisBlacklist(rdb)
			userStore = users.NewRedisStore(rdb)
			recSink = recording.NewRedisSink(rdb)
			limiter = ratelimit.NewLimiter(rdb, cfg.Auth.JWTSecret)
			defer rdb.Close()
		}
	}

	// Postgres holds the durable event log; in-memory otherwise.
	var eventSink events.Sink = events.NewMemorySink()
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("DB open error: %v", err)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("DB ping error: %v", err)
		}
		defer db.Close()
		eventSink = events.NewStore(db)
	}

	// Optional NATS relay for external alerting consumers.
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(serviceName))
		if err != nil {
			log.Printf("[WARN] NATS unavailable (%v), events stay local", err)
		} else {
			defer nc.Close()
			eventSink = &events.FanoutSink{
				Primary: eventSink,
				Relay:   events.NewNATSPublisher(nc, cfg.NATS.Subject, 3),
			}
		}
	}

	blobs, err := recording.NewFileStore(cfg.Recordings.Dir)
	if err != nil {
		log.Fatalf("Recordings dir error: %v", err)
	}

	userSvc := users.NewService(userStore, tokenMgr, blacklist, eventSink)

	notifier := notify.NewNotifier(0)
	hub := notify.NewHub()
	go hub.Run(ctx, notifier.C())

	frames := camera.NewPushSource()

	ctl := surveillance.NewController(surveillance.Config{
		Cooldown:        time.Duration(cfg.Surveillance.CooldownMs) * time.Millisecond,
		SweepInterval:   time.Duration(cfg.Surveillance.SweepSeconds) * time.Second,
		RecordingWindow: time.Duration(cfg.Surveillance.RecordingSeconds) * time.Second,
		Sampler: camera.SamplerConfig{
			Interval:         time.Duration(cfg.Surveillance.SampleIntervalMs) * time.Millisecond,
			WatchdogInterval: time.Duration(cfg.Surveillance.WatchdogIntervalMs) * time.Millisecond,
		},
		PercentThreshold: cfg.Surveillance.PercentThreshold,
		Sensitivity:      cfg.Surveillance.Sensitivity,
	}, surveillance.Deps{
		OpenSource: func(ctx context.Context) (camera.VideoSource, error) {
			if err := frames.Open(ctx); err != nil {
				return nil, err
			}
			return frames, nil
		},
		NewRecorder: camera.NewMJPEGRecorder,
		Events:      eventSink,
		Recordings:  recSink,
		Blobs:       blobs,
		Notifier:    notifier,
		OnState: func(s surveillance.State) {
			hub.Broadcast("state", map[string]string{"state": string(s)})
		},
	})
	ctl.SetShopHours(cfg.Surveillance.ShopOpeningTime, cfg.Surveillance.ShopClosingTime)
	defer ctl.Stop()

	// Hot-reload shop hours from the config file; the profile endpoint
	// overrides them at runtime.
	config.Watch(ctx, *cfgPath, func(next *config.Config) {
		log.Printf("Config reloaded, shop hours %s-%s",
			next.Surveillance.ShopOpeningTime, next.Surveillance.ShopClosingTime)
		ctl.SetShopHours(next.Surveillance.ShopOpeningTime, next.Surveillance.ShopClosingTime)
	})

	router := api.NewRouter(api.Deps{
		Users:      userSvc,
		Controller: ctl,
		Events:     eventSink,
		Recordings: recSink,
		Blobs:      blobs,
		Hub:        hub,
		JWT:        middleware.NewJWTAuth(tokenMgr, blacklist),
		RateLimit:  middleware.NewRateLimit(limiter, ratelimit.DefaultLoginLimit),
		Frames:     frames,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] Shutdown: %v", err)
	}
	log.Printf("Server stopped gracefully")
}
