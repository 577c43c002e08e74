package server

import (
	"net/http"

	"github.com/go-martini/martini"
	"github.com/martini-contrib/render"
	log "github.com/sirupsen/logrus"
)

// FileResponse is a downloadable code template.
type FileResponse struct {
	Filename string `json:"filename"`
	Language string `json:"language"`
	Content  []byte `json:"content"`
}

// SendTemplate answers with the code template of one pattern as JSON.
func (s *Server) SendTemplate(w http.ResponseWriter, r *http.Request, params martini.Params, render render.Render) {
	_, pattern, err := s.catalog.Lookup(params["topic"], params["pattern"])
	if err != nil {
		log.WithError(err).Debug("template for unknown pattern")
		render.JSON(http.StatusNotFound, map[string]string{"error": "Pattern not found"})
		return
	}
	language, err := s.catalog.Language(r.URL.Query().Get("language"))
	if err != nil {
		render.JSON(http.StatusBadRequest, map[string]string{"error": "Unsupported language"})
		return
	}

	info, err := s.app.PatternInfo(r.Context(), pattern.Name, language)
	if err != nil {
		render.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to fetch pattern information."})
		return
	}
	if info.Template == "" {
		render.JSON(http.StatusNotFound, map[string]string{"error": "No template for this pattern"})
		return
	}

	render.JSON(http.StatusOK, FileResponse{
		Filename: s.catalog.Filename(pattern, language),
		Language: language,
		Content:  []byte(info.Template),
	})
}
