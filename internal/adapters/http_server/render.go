package httpserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed templates
var templateFS embed.FS

var funcs = template.FuncMap{
	"lower": strings.ToLower,
}

// views holds one template set per page, each combined with the layout
// and the shared partials.
type views map[string]*template.Template

func loadViews() views {
	pages, err := templateFS.ReadDir("templates/pages")
	if err != nil {
		panic(err)
	}
	v := views{}
	for _, p := range pages {
		name := strings.TrimSuffix(p.Name(), ".html")
		v[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials/*.html",
			"templates/pages/"+p.Name(),
		))
	}
	return v
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (v views) render(w http.ResponseWriter, status int, name string, data page) {
	t, ok := v[name]
	if !ok {
		log.Error().Str("view", name).Msg("unknown view")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		log.Error().Err(err).Str("view", name).Msg("render failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("view", name).Msg("write page failed")
	}
}
