package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.HandleFunc("/ws", c.ws)

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms/{room-id}", func(r chi.Router) {
			r.Get("/", c.getRoom)
			r.Post("/", c.touchRoom)
			r.Get("/messages", c.getMessages)
			r.Post("/messages", c.postMessage)
		})
	})

	return r
}
