package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dsahelper/dsahelper/app"
	"github.com/dsahelper/dsahelper/auth"
	"github.com/dsahelper/dsahelper/client"
	"github.com/dsahelper/dsahelper/config"
	"github.com/dsahelper/dsahelper/notify"
	"github.com/dsahelper/dsahelper/store"
	"github.com/dsahelper/dsahelper/types"
)

// env is everything a command needs, wired from the config file.
type env struct {
	cfg     *config.Config
	store   *store.Store
	creds   *store.Credentials
	session *auth.Session
	client  *client.Client
	notes   *notify.Queue
	app     *app.App
}

func mustStart(cmd *cobra.Command) *env {
	ctx := cmd.Context()
	cfg, err := config.Load(Config.configPath)
	if err != nil {
		log.Fatalf("unable to load config: %v", err)
	}

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("unable to open local store %s: %v", cfg.Storage.Path, err)
	}
	creds := store.NewCredentials(st)
	if err := creds.Load(); err != nil {
		log.Fatalf("unable to read stored LeetCode session: %v", err)
	}

	provider := auth.NewProvider(cfg.Identity.APIKey)
	provider.HTTPClient = &http.Client{Timeout: cfg.Timeout()}
	session := auth.NewSession(provider, st)
	if err := session.Init(ctx); err != nil {
		log.Fatalf("unable to restore your login: %v", err)
	}

	c := client.New(cfg.API.BaseURL, session, cfg.Timeout())
	c.APIReport = Config.apiReport
	c.APIDump = Config.apiDump

	notes := notify.NewQueue(notify.WithSink(printNotification(os.Stderr)))
	return &env{
		cfg:     cfg,
		store:   st,
		creds:   creds,
		session: session,
		client:  c,
		notes:   notes,
		app:     app.New(c, creds, notes),
	}
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		log.WithError(err).Warn("closing local store")
	}
}

var noteColors = map[string]*color.Color{
	notify.Red:    color.New(color.FgRed, color.Bold),
	notify.Green:  color.New(color.FgGreen),
	notify.Blue:   color.New(color.FgCyan),
	notify.Yellow: color.New(color.FgYellow),
}

// printNotification writes each notification as one line.
func printNotification(w io.Writer) notify.Sink {
	return func(n notify.Notification) {
		c, ok := noteColors[n.Color]
		if !ok {
			c = color.New(color.Reset)
		}
		c.Fprintf(w, "%s: %s\n", n.Title, n.Message)
	}
}

// mustSucceed exits when an action failed. The failure has already been
// printed as a notification.
func mustSucceed(err error) {
	if err != nil {
		log.Debugf("%v", err)
		os.Exit(1)
	}
}

func mustParseID(arg string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		log.Fatalf("%q is not a submission id", arg)
	}
	return id
}

func mustGetInt(cmd *cobra.Command, name string) int {
	n, err := cmd.Flags().GetInt(name)
	if err != nil {
		log.Fatalf("bad --%s: %v", name, err)
	}
	return n
}

func mustGetString(cmd *cobra.Command, name string) string {
	s, err := cmd.Flags().GetString(name)
	if err != nil {
		log.Fatalf("bad --%s: %v", name, err)
	}
	return s
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	b, err := cmd.Flags().GetBool(name)
	if err != nil {
		log.Fatalf("bad --%s: %v", name, err)
	}
	return b
}

// mustLoadSubmission fetches the recent submissions and returns the one with id.
func mustLoadSubmission(ctx context.Context, e *env, cmd *cobra.Command, id int64) *types.Submission {
	_, err := e.app.LoadSubmissions(ctx, mustGetInt(cmd, "limit"))
	mustSucceed(err)
	sub, err := e.app.Submission(id)
	if err != nil {
		log.Fatalf("submission %d is not among your %d most recent; try a larger --limit", id, mustGetInt(cmd, "limit"))
	}
	return sub
}

// mustLoadRevision fetches the revision list and returns the entry for id.
func mustLoadRevision(ctx context.Context, e *env, id int64) *types.RevisionProblem {
	_, err := e.app.LoadRevisions(ctx)
	mustSucceed(err)
	rp, err := e.app.FindRevision(id)
	if err != nil {
		log.Fatalf("submission %d is not in your revision list", id)
	}
	return rp
}

var stdin = bufio.NewReader(os.Stdin)

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// mustReadSecret reads a line without echo from a terminal, or a plain line otherwise.
func mustReadSecret(prompt string) string {
	if interactive() {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Fatalf("error reading from terminal: %v", err)
		}
		return strings.TrimSpace(string(raw))
	}
	line, err := stdin.ReadString('\n')
	if err != nil && err != io.EOF {
		log.Fatalf("error reading standard input: %v", err)
	}
	return strings.TrimSpace(line)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
