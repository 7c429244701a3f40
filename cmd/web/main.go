package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gezgi_admin/internal/adapters/gezgi"
	server "gezgi_admin/internal/adapters/http_server"
	"gezgi_admin/internal/adapters/observability"
	redisad "gezgi_admin/internal/adapters/redis"
	"gezgi_admin/internal/app"
	"gezgi_admin/internal/domain"
	"gezgi_admin/internal/shared"
	mysqlrepo "gezgi_admin/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// audit log is optional
	var audit domain.AuditLog = mysqlrepo.Noop{}
	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("mysql open failed")
		}
		defer db.Close()
		audit = mysqlrepo.New(db)
		log.Info().Msg("audit log enabled")
	}

	rdb := redisad.Client(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	states := redisad.NewStates(rdb, cfg.StateTTL)
	notices := redisad.NewNotices(rdb, cfg.StateTTL)

	gw, err := gezgi.New(cfg.APIBase, cfg.APIRPS, cfg.APITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("api client")
	}

	// http
	srv := server.New(server.CookieConfig{MaxAge: cfg.CookieMaxAge, Secure: cfg.CookieSecure})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Accordion: app.NewAccordion(gw, states, notices, audit),
		Creator:   app.NewCreator(gw, states, notices, audit),
		Loader:    app.NewLoader(gw),
		Auth:      app.NewAuth(gw),
		Teams:     app.NewTeams(gw),
		Notices:   notices,
		Audit:     audit,
		PageSize:  cfg.PageSize,
	})

	servers := []*http.Server{{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}}
	if cfg.MetricsAddr != "" {
		servers = append(servers, observability.MetricsServer(cfg.MetricsAddr, reg))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, hs := range servers {
		hs := hs
		g.Go(func() error {
			log.Info().Str("addr", hs.Addr).Msg("listening")
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, hs := range servers {
			if err := hs.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Str("addr", hs.Addr).Msg("shutdown")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("stopped")
}
