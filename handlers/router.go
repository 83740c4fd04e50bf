package handlers

import (
	"net/http"
	"time"

	"github.com/camden-git/familytreebackend/realtime"
	"github.com/camden-git/familytreebackend/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	Service        *services.FamilyService
	Hub            *realtime.Hub // optional; /api/events is not mounted without it
	Log            *logrus.Logger
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(opts.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(corsOptions).Handler)

	personHandler := &PersonHandler{Service: opts.Service, Log: opts.Log}
	treeHandler := &TreeHandler{Service: opts.Service, Log: opts.Log}
	dataHandler := &DataHandler{Service: opts.Service, Log: opts.Log}

	r.Route("/api", func(r chi.Router) {
		if opts.Hub != nil {
			r.Get("/events", opts.Hub.ServeWS)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/people", func(r chi.Router) {
				r.Get("/", personHandler.ListPeople)
				r.Post("/", personHandler.CreatePerson)
				r.Route("/{person_id}", func(r chi.Router) {
					r.Get("/", personHandler.GetPerson)
					r.Put("/", personHandler.UpdatePerson)
					r.Delete("/", personHandler.DeletePerson)

					r.Post("/children", personHandler.AddChild)
					r.Post("/parents", personHandler.AddParent)
					r.Put("/parents/{parent_id}", personHandler.LinkParent)
					r.Post("/spouse", personHandler.AddSpouse)
					r.Put("/spouse/{spouse_id}", personHandler.LinkSpouse)
					r.Delete("/spouse", personHandler.UnlinkSpouse)

					r.Post("/family-root", personHandler.MakeFamilyRoot)
					r.Delete("/family-root", personHandler.RemoveFamilyRoot)

					r.Get("/descendants/count", personHandler.DescendantCount)
					r.Get("/path/{target_id}", personHandler.PathToTarget)
					r.Get("/label", personHandler.Label)
					r.Get("/navigate", personHandler.Navigate)
				})
			})

			r.Get("/families", treeHandler.ListFamilies)
			r.Get("/tree", treeHandler.GetTree)
			r.Get("/tree/{root_id}", treeHandler.GetTree)
			r.Get("/search", treeHandler.Search)

			r.Get("/export", dataHandler.Export)
			r.Post("/import", dataHandler.Import)
			r.Delete("/data", dataHandler.Clear)
		})
	})

	return r
}
