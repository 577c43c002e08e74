// Package server is the local dashboard served by "dsa serve".
package server

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-martini/martini"
	"github.com/martini-contrib/binding"
	mgzip "github.com/martini-contrib/gzip"
	"github.com/martini-contrib/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/dsahelper/dsahelper/app"
	"github.com/dsahelper/dsahelper/auth"
	"github.com/dsahelper/dsahelper/notify"
	"github.com/dsahelper/dsahelper/patterns"
	"github.com/dsahelper/dsahelper/types"
)

// JudgeSessionStore is the stored judge-site session the cookie form edits.
type JudgeSessionStore interface {
	JudgeSession() string
	SetJudgeSession(value string) error
	ClearJudgeSession() error
}

// Account reports the signed-in user, or nil.
type Account interface {
	User() *auth.User
}

// Options are the dependencies of a Server. Catalog defaults to the
// embedded pattern catalog.
type Options struct {
	App           *app.App
	JudgeSessions JudgeSessionStore
	Notifications *notify.Queue
	Catalog       *patterns.Catalog
	Account       Account
	Secret        string
}

// Server renders the dashboard pages.
type Server struct {
	app     *app.App
	creds   JudgeSessionStore
	notes   *notify.Queue
	catalog *patterns.Catalog
	account Account
	views   *viewCodec
	pages   map[string]*pageTemplate
	m       *martini.Martini
}

// New builds the dashboard handler.
func New(opts Options) (*Server, error) {
	if opts.App == nil || opts.JudgeSessions == nil || opts.Notifications == nil {
		return nil, errors.New("dashboard needs an app, a judge session store, and a notification queue")
	}
	if opts.Catalog == nil {
		opts.Catalog = patterns.Default()
	}
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:     opts.App,
		creds:   opts.JudgeSessions,
		notes:   opts.Notifications,
		catalog: opts.Catalog,
		account: opts.Account,
		views:   newViewCodec(opts.Secret),
		pages:   pages,
	}

	// set up martini
	r := martini.NewRouter()
	m := martini.New()
	m.Logger(stdlog.New(log.StandardLogger().WriterLevel(log.DebugLevel), "", 0))
	m.Use(martini.Recovery())
	m.Use(mgzip.All())
	m.Use(render.Renderer(render.Options{IndentJSON: false}))
	m.MapTo(r, (*martini.Routes)(nil))
	m.Action(r.Handle)

	withView := s.views.withView

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/submissions", http.StatusFound)
	})

	// submissions
	r.Get("/submissions", counter, withView, s.GetSubmissions)
	r.Post("/submissions", counter, withView, binding.Form(fetchForm{}), s.PostSubmissions)
	r.Get("/submissions/:id", counter, s.GetSubmissionCode)
	r.Get("/submissions/:id/feedback", counter, s.GetSubmissionFeedback)
	r.Get("/submissions/:id/compare", counter, s.GetSubmissionCompare)
	r.Get("/submissions/:id/revision", counter, s.GetAddRevision)
	r.Post("/submissions/:id/revision", counter, binding.Form(revisionForm{}), s.PostAddRevision)

	// revisions
	r.Get("/revisions", counter, withView, s.GetRevisions)
	r.Post("/revisions/refresh", counter, s.PostRevisionsRefresh)
	r.Post("/revisions/:id/revised", counter, s.PostRevised)
	r.Get("/revisions/:id/edit", counter, s.GetEditRevision)
	r.Post("/revisions/:id/edit", counter, binding.Form(revisionForm{}), s.PostEditRevision)
	r.Post("/revisions/:id/delete", counter, s.PostDeleteRevision)

	// analysis
	r.Get("/overall", counter, s.GetOverall)

	// patterns
	r.Get("/patterns", counter, withView, s.GetPatterns)
	r.Get("/patterns/:topic", counter, withView, s.GetTopic)
	r.Get("/patterns/:topic/:pattern", counter, withView, s.GetPattern)
	r.Get("/patterns/:topic/:pattern/template", counter, s.SendTemplate)

	// judge-site session
	r.Get("/cookie", counter, s.GetCookie)
	r.Post("/cookie", counter, binding.Form(cookieForm{}), s.PostCookie)
	r.Post("/cookie/clear", counter, s.PostCookieClear)
	r.Post("/view/reset", counter, func(w http.ResponseWriter, r *http.Request) {
		s.views.Delete(w)
		http.Redirect(w, r, "/submissions", http.StatusSeeOther)
	})

	// notifications
	r.Get("/api/notifications", func(render render.Render) {
		render.JSON(http.StatusOK, s.notes.Active())
	})
	r.Delete("/api/notifications/:id", func(w http.ResponseWriter, params martini.Params) {
		s.notes.Remove(params["id"])
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/notifications/:id/dismiss", func(w http.ResponseWriter, r *http.Request, params martini.Params) {
		s.notes.Remove(params["id"])
		redirectBack(w, r, "/submissions")
	})

	r.Get("/api/version", counter, func(render render.Render) {
		render.JSON(http.StatusOK, &types.CurrentVersion)
	})
	r.Get("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{DisableCompression: true}).ServeHTTP)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		loggedHTTPErrorf(w, http.StatusNotFound, "no such page: %s", r.URL.Path)
	})

	s.m = m
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.m.ServeHTTP(w, r)
}

// Run serves the dashboard on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.WithField("address", addr).Info("dashboard listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func loggedHTTPErrorf(w http.ResponseWriter, status int, format string, params ...interface{}) error {
	msg := fmt.Sprintf(format, params...)
	log.WithField("status", status).Warn(msg)
	http.Error(w, msg, status)
	return fmt.Errorf("%s", msg)
}

func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		target = ref.RequestURI()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
