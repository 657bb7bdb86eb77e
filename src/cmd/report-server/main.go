package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"embroidery-reports/src/pkg/config"
	echomw "embroidery-reports/src/pkg/echo-middleware"
	"embroidery-reports/src/pkg/reportapi"
	"embroidery-reports/src/pkg/reporting"
	"embroidery-reports/src/pkg/store"
)

/*
main serves reports over HTTP until interrupted.

	curl -H "Authorization: Bearer $REPORTS_API_BEARER_TOKEN" \
		"http://127.0.0.1:8401/reports/finance?from=2024-03-01&to=2024-03-31" -o report.pdf
*/
func main() {
	configPath := flag.String("config", "./cfg/config.json", "Path to your configuration file.")
	flag.Parse()

	config.InitializeConfig(*configPath)
	echomw.InitializeConfig(config.Section[echomw.Config]("server"))
	reporting.InitializeConfig(config.Section[reporting.Config]("report"))
	store.InitializeConfig(config.Section[store.Config]("store"))

	requireToken := echomw.Cfg.RequireToken == nil || *echomw.Cfg.RequireToken
	if requireToken {
		config.RequireEnvVars(echomw.EnvBearerToken).QuitIf(xerr.ErrorTypeError)
	}

	service := reporting.New(store.NewExportDir(store.Cfg.ExportDir, store.Cfg.Location(reporting.Cfg.Location())), reporting.Cfg)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RouteAccessLoggerMiddleware)

	limiter := echomw.NewRateLimiter(echomw.Cfg.MiddlewareRateLimit, echomw.Cfg.MiddlewareBurst)
	middlewares := []echo.MiddlewareFunc{limiter.Middleware}
	if requireToken {
		middlewares = append(middlewares, echomw.RequireBearerToken(echomw.BearerTokenFromEnv()))
	} else {
		tl.Log(tl.Warning, palette.YellowBold, "Report routes are %s", "not protected by a token")
	}
	reportapi.NewHandler(service).Register(e, middlewares...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		tl.Log(tl.Notice, palette.BlueBold, "Serving reports on '%s'", echomw.Cfg.Addr())
		err := e.Start(echomw.Cfg.Addr())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			xerr.QuitIfError(err, "start report server")
		}
	}()

	<-ctx.Done()
	tl.Log(tl.Info, palette.Yellow, "Shutting down report server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	xerr.QuitIfError(e.Shutdown(shutdownCtx), "shut down report server")
	tl.Log(tl.Info1, palette.Green, "Report server stopped")
}
