package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dsahelper/dsahelper/auth"
	"github.com/dsahelper/dsahelper/markdown"
	"github.com/dsahelper/dsahelper/notify"
	"github.com/dsahelper/dsahelper/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"submissions",
	"code",
	"feedback",
	"compare",
	"revision_form",
	"revisions",
	"overall",
	"patterns",
	"topic",
	"pattern",
	"cookie",
}

var funcs = template.FuncMap{
	"markdown": markdown.ToHTML,
	"join":     strings.Join,
	"inc":      func(i int) int { return i + 1 },
	"when": func(ts int64) string {
		return time.Unix(ts, 0).Format("2006-01-02 15:04")
	},
	"passed": func(sub types.Submission) bool {
		return sub.Passed()
	},
	"status": func(rp types.RevisionProblem, today string) string {
		return string(rp.Status(today))
	},
}

type pageTemplate struct {
	t *template.Template
}

func loadPages() (map[string]*pageTemplate, error) {
	pages := make(map[string]*pageTemplate)
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", name, err)
		}
		pages[name] = &pageTemplate{t: t}
	}
	return pages, nil
}

// page is what every template receives.
type page struct {
	Title           string
	Nav             string
	User            *auth.User
	HasJudgeSession bool
	Notifications   []notify.Notification
	Today           string
	View            *ViewState
	Data            interface{}
}

func (s *Server) newPage(title, nav string, view *ViewState, data interface{}) *page {
	p := &page{
		Title:           title,
		Nav:             nav,
		HasJudgeSession: s.creds.JudgeSession() != "",
		Notifications:   s.notes.Active(),
		Today:           s.app.Today(),
		View:            view,
		Data:            data,
	}
	if s.account != nil {
		p.User = s.account.User()
	}
	return p
}

// show renders a page into a buffer first so template errors become a 500.
func (s *Server) show(w http.ResponseWriter, status int, name string, p *page) {
	tmpl, ok := s.pages[name]
	if !ok {
		loggedHTTPErrorf(w, http.StatusInternalServerError, "no page named %s", name)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.t.ExecuteTemplate(&buf, "layout.html", p); err != nil {
		log.WithError(err).WithField("page", name).Error("rendering page")
		loggedHTTPErrorf(w, http.StatusInternalServerError, "error rendering page %s", name)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
