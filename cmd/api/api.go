package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClementeCano/ReViews/internal/auth"
	"github.com/ClementeCano/ReViews/internal/geo"
	"github.com/ClementeCano/ReViews/internal/ratelimiter"
	"github.com/ClementeCano/ReViews/internal/session"
	"github.com/ClementeCano/ReViews/internal/store"
	"github.com/ClementeCano/ReViews/internal/uploader"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config      config
	store       store.Storage
	logger      *zap.SugaredLogger
	sessions    *session.Manager
	verifier    auth.Verifier
	geocoder    geo.Geocoder
	uploader    uploader.Uploader
	rateLimiter *ratelimiter.FixedWindowRateLimiter
	templates   *template.Template
}

type config struct {
	addr        string
	env         string
	clientID    string
	db          dbConfig
	rateLimiter ratelimiter.Config
}

type dbConfig struct {
	uri string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(app.RateLimiterMiddleware)

	r.Get("/healthz", app.healthCheckHandler)

	r.Post("/login", app.loginHandler)
	r.Get("/logout", app.logoutHandler)
	r.Get("/", app.homeHandler)

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", app.listReviewsHandler)
		r.Post("/", app.createReviewHandler)
		r.Get("/{reviewID}", app.getReviewHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)
	janitorDone := make(chan struct{})

	go app.sessions.Janitor(time.Minute, janitorDone)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		close(janitorDone)
		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
