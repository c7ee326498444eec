package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Prefix of the gateway's own endpoints. Nothing under it is forwarded
// upstream.
const controlPrefix = "/_offline"

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Route(controlPrefix, func(r chi.Router) {
		// the event stream is flushed per event and must not be buffered
		// by the gzip writer
		r.Get("/events", h.streamEvents)

		r.Group(func(r chi.Router) {
			r.Use(withGZip)

			r.Get("/status", h.getStatus)
			r.Get("/version", h.getServerVersion)
			r.Get("/queue", h.listQueue)
			r.Get("/queue/{id}", h.getQueuedWrite)
			r.Post("/sync", h.triggerSync)
			r.Post("/messages", h.postMessage)
			r.Post("/lifecycle/install", h.install)
			r.Post("/lifecycle/activate", h.activate)
			r.Get("/notifications", h.listNotifications)
			r.Post("/notifications/{id}/actions/{action}", h.notificationAction)
		})

		r.With(h.pushAuth).Post("/push", h.push)

		r.NotFound(h.controlNotFound)
	})

	// everything else is the POS application itself
	router.HandleFunc("/*", h.proxy)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
