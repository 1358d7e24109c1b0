package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lesechos/accounts/internal/audit"
	"github.com/lesechos/accounts/internal/config"
	"github.com/lesechos/accounts/internal/database"
	"github.com/lesechos/accounts/internal/handlers"
	"github.com/lesechos/accounts/internal/logging"
	"github.com/lesechos/accounts/internal/metrics"
	"github.com/lesechos/accounts/internal/middleware"
	"github.com/lesechos/accounts/internal/password"
	"github.com/lesechos/accounts/internal/repository"
	"github.com/lesechos/accounts/internal/revocation"
	"github.com/lesechos/accounts/internal/server"
	"github.com/lesechos/accounts/internal/service"
	"github.com/lesechos/accounts/pkg/tokens"
)

// app holds the wired components of a running service. close releases them
// in reverse order of acquisition.
type app struct {
	cfg *config.Config
	log *logging.Logger

	repo     repository.Repository
	pgPool   *pgxpool.Pool
	revoked  revocation.Store
	purger   revocation.Purger
	auditLog *audit.Logger
	auth     *service.AuthService
	users    *service.UserService
	checks   []handlers.HealthCheck
	closers  []func()
}

func newApp(ctx context.Context, cfg *config.Config, log *logging.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	if err := a.openRepository(ctx); err != nil {
		a.close()
		return nil, err
	}
	if err := a.openRevocationStore(); err != nil {
		a.close()
		return nil, err
	}
	if err := a.openAudit(); err != nil {
		a.close()
		return nil, err
	}

	issuer, err := tokens.NewIssuer(cfg.Auth.JWTSecret)
	if err != nil {
		a.close()
		return nil, err
	}
	hasher := password.NewHasher(cfg.Auth.BcryptCost)

	a.auth = service.NewAuthService(a.repo, hasher, issuer, a.revoked, a.auditLog, log)
	a.users = service.NewUserService(a.repo, hasher, a.auditLog, log)
	return a, nil
}

func (a *app) openRepository(ctx context.Context) error {
	db := a.cfg.Database
	switch db.Type {
	case config.DatabaseMemory:
		a.log.Warn("Using in-memory repository (development only)")
		a.repo = repository.NewInMemoryRepository()

	case config.DatabasePostgres:
		connString := db.Postgres.ConnString()
		a.log.Info("Connecting to PostgreSQL",
			slog.String("host", db.Postgres.Host),
			slog.Int("port", db.Postgres.Port),
			slog.String("database", db.Postgres.Database),
		)
		if db.AutoMigrate {
			if err := database.MigrateUp(db.MigrationsPath, connString, a.log.Logger); err != nil {
				return err
			}
		}
		pg, err := repository.NewPostgresRepository(ctx, connString)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pg.Close)
		a.repo = pg
		a.pgPool = pg.Pool()
		a.checks = append(a.checks, handlers.HealthCheck{Name: "postgres", Check: a.pgPool.Ping})

	case config.DatabaseMongo:
		a.log.Info("Connecting to MongoDB", slog.String("database", db.Mongo.Database))
		mongoRepo, err := repository.NewMongoRepository(ctx, db.Mongo.URI, db.Mongo.Database)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoRepo.Close(ctx); err != nil {
				a.log.Warn("MongoDB disconnect failed", logging.Error(err))
			}
		})
		a.repo = mongoRepo
		a.checks = append(a.checks, handlers.HealthCheck{Name: "mongo", Check: mongoRepo.Ping})

	default:
		return fmt.Errorf("unsupported database type %q", db.Type)
	}
	return nil
}

func (a *app) openRevocationStore() error {
	switch a.cfg.Revocation.Backend {
	case config.RevocationMemory:
		a.revoked = revocation.NewMemoryStore(a.cfg.Revocation.SweepInterval)

	case config.RevocationRedis:
		store, err := revocation.NewRedisStore(a.cfg.Redis.URL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		a.revoked = store
		a.checks = append(a.checks, handlers.HealthCheck{Name: "redis", Check: store.Ping})

	case config.RevocationPostgres:
		if a.pgPool == nil {
			return fmt.Errorf("revocation backend %q requires database type %q", config.RevocationPostgres, config.DatabasePostgres)
		}
		store := revocation.NewPostgresStore(a.pgPool)
		a.revoked = store
		a.purger = store

	default:
		return fmt.Errorf("unsupported revocation backend %q", a.cfg.Revocation.Backend)
	}
	a.log.Info("Revocation store ready", slog.String("backend", a.cfg.Revocation.Backend))
	return nil
}

func (a *app) openAudit() error {
	var opts []audit.Option
	if a.cfg.NATS.Enabled {
		pub, err := audit.NewNATSPublisher(audit.NATSConfig{
			URL:           a.cfg.NATS.URL,
			Name:          "accounts",
			MaxReconnects: a.cfg.NATS.MaxReconnects,
			ReconnectWait: a.cfg.NATS.ReconnectWait,
		}, a.log.Logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = pub.Close() })
		opts = append(opts, audit.WithPublisher(pub, a.cfg.NATS.SubjectPrefix))
		a.log.Info("Publishing audit events to NATS", slog.String("url", a.cfg.NATS.URL))
	}
	a.auditLog = audit.NewLogger(a.cfg.AuditSecret(), a.log, opts...)
	return nil
}

func (a *app) router() http.Handler {
	h := server.Handlers{
		Auth:    handlers.NewAuthHandler(a.auth, a.log),
		Users:   handlers.NewUserHandler(a.users, a.log),
		Health:  handlers.NewHealthHandler(a.checks...),
		Metrics: metrics.Handler(),
	}
	guard := middleware.NewGuard(a.auth, a.log)
	return server.NewRouter(h, guard, a.log, middleware.DefaultCORSConfig(a.cfg.CORS.AllowedOrigins))
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
