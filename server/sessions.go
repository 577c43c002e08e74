package server

import (
	"net/http"
	"time"

	"github.com/go-martini/martini"
	"github.com/gorilla/securecookie"
	log "github.com/sirupsen/logrus"

	"github.com/dsahelper/dsahelper/app"
	"github.com/dsahelper/dsahelper/types"
)

// CookieName is the cookie holding the dashboard view state.
const CookieName = "dsahelper_view"

const (
	ViewTable    = "table"
	ViewTimeline = "timeline"
)

// ViewState is the browser's remembered filters and options.
type ViewState struct {
	Limit            int
	SubmissionFilter types.SubmissionFilter
	SubmissionQuery  string
	RevisionFilter   types.RevisionFilter
	RevisionQuery    string
	RevisionView     string
	Language         string
}

func defaultView() *ViewState {
	return &ViewState{
		Limit:            app.DefaultSubmissionLimit,
		SubmissionFilter: types.SubmissionsAll,
		RevisionFilter:   types.RevisionsAll,
		RevisionView:     ViewTable,
	}
}

// normalize replaces anything unusable with its default.
func (v *ViewState) normalize() {
	if v.Limit <= 0 {
		v.Limit = app.DefaultSubmissionLimit
	}
	if f, err := types.ParseSubmissionFilter(string(v.SubmissionFilter)); err == nil {
		v.SubmissionFilter = f
	} else {
		v.SubmissionFilter = types.SubmissionsAll
	}
	if f, err := types.ParseRevisionFilter(string(v.RevisionFilter)); err == nil {
		v.RevisionFilter = f
	} else {
		v.RevisionFilter = types.RevisionsAll
	}
	if v.RevisionView != ViewTimeline {
		v.RevisionView = ViewTable
	}
}

type viewCodec struct {
	secure *securecookie.SecureCookie
}

func newViewCodec(secret string) *viewCodec {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	secure := securecookie.New(key, nil)
	secure.MaxAge(0)
	return &viewCodec{secure: secure}
}

// read decodes the view cookie, falling back to defaults.
func (vc *viewCodec) read(r *http.Request) *ViewState {
	view := defaultView()
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return view
	}
	if err := vc.secure.Decode(CookieName, cookie.Value, view); err != nil {
		log.WithError(err).Debug("ignoring undecodable view cookie")
		return defaultView()
	}
	view.normalize()
	return view
}

// Save writes the view cookie. Call it before the response body.
func (vc *viewCodec) Save(w http.ResponseWriter, view *ViewState) {
	encoded, err := vc.secure.Encode(CookieName, view)
	if err != nil {
		log.WithError(err).Error("encoding view cookie")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  time.Now().AddDate(1, 0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Delete expires the view cookie.
func (vc *viewCodec) Delete(w http.ResponseWriter) {
	epoch := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "deleted",
		Path:     "/",
		Expires:  epoch,
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// withView maps the request's *ViewState for the handlers after it.
func (vc *viewCodec) withView(c martini.Context, r *http.Request) {
	c.Map(vc.read(r))
}
