package router

import (
	"context"
	"net/http"

	authsvc "propshare-backend/internal/auth"
	"propshare-backend/internal/config"
	"propshare-backend/internal/infrastructure/database"
	"propshare-backend/internal/infrastructure/events"
	authhandler "propshare-backend/internal/interfaces/handlers/auth"
	eventhandler "propshare-backend/internal/interfaces/handlers/events"
	healthhandler "propshare-backend/internal/interfaces/handlers/health"
	portfoliohandler "propshare-backend/internal/interfaces/handlers/portfolio"
	propertyhandler "propshare-backend/internal/interfaces/handlers/properties"
	proposalhandler "propshare-backend/internal/interfaces/handlers/proposals"
	"propshare-backend/internal/ledger"
	"propshare-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp wires middleware, the ledger and every route. Without DATABASE_URL the ledger runs
// in memory only and the event journal endpoint answers 503.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	opts := []ledger.Option{}
	var journal propertyhandler.EventLister
	if db != nil {
		store := &database.LedgerStore{DB: db}
		opts = append(opts, ledger.WithStore(store))
		journal = store
	}
	var feed eventhandler.RecentReader
	if rdb != nil {
		pub := &events.RedisPublisher{Rdb: rdb, Channel: cfg.EventsChannel, Backlog: cfg.EventsBacklog}
		opts = append(opts, ledger.WithPublisher(pub))
		if cfg.EventsBacklog > 0 {
			feed = pub
		}
	}
	l := ledger.New(opts...)
	if err := l.Restore(context.Background()); err != nil {
		return nil, nil, nil, err
	}
	log.Info().
		Uint64("properties", l.PropertyCount()).
		Uint64("proposals", l.ProposalCount()).
		Bool("durable", db != nil).
		Msg("ledger ready")

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		Ledger:         l,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var finder authsvc.PrincipalFinder
	if db != nil {
		finder = &authsvc.GormPrincipalFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		Finder: finder,
		Rdb:    rdb,
		Config: sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	ph := &propertyhandler.Handlers{Ledger: l, Events: journal}
	pg := app.Group("/api/v1/properties")
	pg.Get("/", ph.List)
	pg.Post("/", middleware.AuthorizeCapability(ledger.AdminCapability), ph.Tokenize)
	pg.Get("/:id", ph.Get)
	pg.Post("/:id/purchase", middleware.RequireAuth(), ph.Purchase)
	pg.Get("/:id/holdings/:holder", ph.Holding)
	pg.Post("/:id/withdraw", middleware.RequireAuth(), ph.Withdraw)
	pg.Get("/:id/events", ph.History)
	pg.Post("/:id/rent/verify", middleware.AuthorizeCapability(ledger.VerifierCapability), ph.VerifyRent)
	pg.Post("/:id/rent/deposit", middleware.RequireAuth(), ph.DepositRent)
	pg.Get("/:id/rent/pending", ph.PendingRent)

	gh := &proposalhandler.Handlers{Ledger: l}
	pg.Get("/:id/proposals", gh.ListForProperty)
	pg.Post("/:id/proposals", middleware.RequireAuth(), gh.Create)
	prg := app.Group("/api/v1/proposals")
	prg.Get("/:id", gh.Get)
	prg.Post("/:id/vote", middleware.RequireAuth(), gh.Vote)
	prg.Post("/:id/execute", middleware.RequireAuth(), gh.Execute)

	fh := &portfoliohandler.Handlers{Ledger: l}
	app.Get("/api/v1/portfolio", middleware.RequireAuth(), fh.Mine)
	app.Get("/api/v1/portfolio/:holder", fh.ForHolder)

	eh := &eventhandler.Handlers{Feed: feed}
	app.Get("/api/v1/events/recent", eh.Recent)

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
