package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/bramblewiki/bramble/pkg/acl"
	"github.com/bramblewiki/bramble/pkg/api"
	"github.com/bramblewiki/bramble/pkg/audit"
	"github.com/bramblewiki/bramble/pkg/authz"
	"github.com/bramblewiki/bramble/pkg/config"
	"github.com/bramblewiki/bramble/pkg/event"
	"github.com/bramblewiki/bramble/pkg/group"
	"github.com/bramblewiki/bramble/pkg/observability"
	"github.com/bramblewiki/bramble/pkg/page"
	"github.com/bramblewiki/bramble/pkg/policy"
	"github.com/bramblewiki/bramble/pkg/registry"
	"github.com/bramblewiki/bramble/pkg/session"
	"github.com/bramblewiki/bramble/pkg/user"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx := context.Background()

	tp, err := observability.InitTracing(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		return err
	}

	registryProm := prometheus.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registryProm)
	}

	db, err := sql.Open("sqlite3", cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Cache.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		defer rdb.Close()
	}

	dispatcher := event.NewDispatcher()

	users, err := user.NewSQLiteDirectory(db)
	if err != nil {
		return err
	}

	groupDB, err := group.NewSQLiteDatabase(db)
	if err != nil {
		return err
	}
	groups, err := group.NewStore(dispatcher, groupDB)
	if err != nil {
		return err
	}

	if metrics != nil {
		dispatcher.Subscribe(func(e event.Event) {
			switch e.Type {
			case event.TypeGroupAdd, event.TypeGroupAddMember,
				event.TypeGroupRemoveMember, event.TypeGroupRemove:
				metrics.ObserveGroupEvent(string(e.Type), len(groups.Names()))
			}
		})
	}

	reg := registry.New(groups, users)
	pages := page.NewRepository(reg.Resolve)

	policySource, err := loadPolicy(cfg, dispatcher, logger, metrics)
	if err != nil {
		return err
	}
	defer policySource.Close()

	roleComputer, err := session.NewRoleComputer(groups, cfg.Security.RoleCacheSize, dispatcher)
	if err != nil {
		return err
	}

	decisionCache, err := authz.NewDecisionCache(cfg.Cache.Size, rdb, cfg.Cache.TTL, dispatcher)
	if err != nil {
		return err
	}
	if metrics != nil {
		decisionCache.WithMetrics(metrics)
	}

	evaluator := authz.NewEvaluator(roleComputer, acl.NewStore(pages), policySource).
		WithCache(decisionCache).
		WithLogger(logger)
	if metrics != nil {
		evaluator.WithMetrics(metrics)
	}

	auditLogger, auditDB, err := buildAuditTrail(cfg, db, logger)
	if err != nil {
		return err
	}
	defer auditLogger.Close()
	audit.Subscribe(dispatcher, auditLogger, logger)

	sessions := session.NewManager()

	server := api.NewServer(api.Deps{
		Groups:        groups,
		Users:         users,
		Pages:         pages,
		Registry:      reg,
		Evaluator:     evaluator,
		Policy:        policySource,
		Sessions:      sessions,
		Audit:         auditLogger,
		AuditDB:       auditDB,
		Logger:        logger,
		Metrics:       metrics,
		SessionCookie: cfg.Security.SessionCookie,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux,
		observability.NewHealthChecker(db, rdb, cfg.Observability.OTelServiceVersion))
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", observability.Handler(registryProm))
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.HealthAddr(),
		Handler: healthMux,
	}

	var g errgroup.Group
	g.Go(func() error {
		logger.Infof("API server listening on %s", cfg.Server.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("Health server listening on %s", cfg.Server.HealthAddr())
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.Register(healthServer.Shutdown)
	shutdown.Register(func(ctx context.Context) error {
		return observability.ShutdownTracing(ctx, tp, logger)
	})
	g.Go(shutdown.Wait)

	return g.Wait()
}

// loadPolicy builds the policy source from the configured file, falling
// back to the built-in default policy, and starts the file watcher when
// requested.
func loadPolicy(cfg *config.Config, dispatcher *event.Dispatcher, logger *observability.Logger, metrics *observability.Metrics) (*policy.Source, error) {
	if cfg.Security.PolicyPath == "" {
		logger.Info("using built-in default security policy")
		return policy.NewSource(policy.Default(), dispatcher), nil
	}

	src, err := policy.LoadFile(cfg.Security.PolicyPath, dispatcher)
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded security policy from %s", cfg.Security.PolicyPath)

	if cfg.Security.WatchPolicy {
		err := src.Watch(func(err error) {
			logger.WithError(err).Error("policy reload failed; previous policy stays active")
			if metrics != nil {
				metrics.PolicyReloadsTotal.WithLabelValues("failure").Inc()
			}
		})
		if err != nil {
			src.Close()
			return nil, err
		}
		if metrics != nil {
			dispatcher.Subscribe(func(e event.Event) {
				if e.Type == event.TypePolicyReload {
					metrics.PolicyReloadsTotal.WithLabelValues("success").Inc()
				}
			})
		}
	}
	return src, nil
}

// buildAuditTrail assembles the configured audit sinks. The database sink
// is returned separately because the admin API queries it.
func buildAuditTrail(cfg *config.Config, db *sql.DB, logger *observability.Logger) (audit.Logger, *audit.DBLogger, error) {
	if !cfg.Audit.Enabled {
		return audit.NopLogger{}, nil, nil
	}

	var sinks []audit.Logger
	var dbLogger *audit.DBLogger

	if cfg.Audit.Database {
		var err error
		dbLogger, err = audit.NewDBLogger(db)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, dbLogger)
	}
	if cfg.Audit.FilePath != "" {
		fileLogger, err := audit.NewFileLogger(cfg.Audit.FilePath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fileLogger)
	}

	switch len(sinks) {
	case 0:
		logger.Warn("audit enabled but no sinks configured; records will be dropped")
		return audit.NopLogger{}, nil, nil
	case 1:
		return sinks[0], dbLogger, nil
	default:
		return audit.NewMultiLogger(sinks...), dbLogger, nil
	}
}
