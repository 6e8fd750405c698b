package impl

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coinmeme-project/coinmeme/pkg/auth"
	coinHttp "github.com/coinmeme-project/coinmeme/pkg/http"
	"github.com/coinmeme-project/coinmeme/pkg/memedb"
	"github.com/coinmeme-project/coinmeme/pkg/utils"
)

// Routes builds the service's HTTP surface. The API sits under /api
// behind bearer-token auth; everything else serves the UI's static build
// from staticDir.
func (s *server) Routes(apiKey string, staticDir string) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAPIKey(apiKey))
		api.Get("/briefs", s.handleBriefs)
		api.Get("/templates", s.handleTemplates)
		api.Post("/generate", s.handleGenerate)
	})

	if staticDir != "" {
		fileServer := coinHttp.HandleFileServer(http.FileServer(http.Dir(staticDir)))
		router.Get("/assets/*", fileServer)
		router.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, staticDir+"/index.html")
		})
	}
	return router
}

func (s *server) handleBriefs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.briefs)
}

func (s *server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, utils.Map(s.templates, func(t memedb.Template) TemplateSummary {
		fields := make(map[string]string, len(t.Schema))
		for name, spec := range t.Schema {
			fields[name] = spec.Description
		}
		return TemplateSummary{Name: t.Name, Explanation: t.Explanation, Fields: fields}
	}))
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
