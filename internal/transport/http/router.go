package http

import (
	"net/http"

	"chat-trivia-service/internal/app"
	"github.com/gorilla/mux"
)

// NewRouter exposes the REST API, the widget websocket and a health probe.
func NewRouter(service *app.TriviaService, widget WidgetConfig) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := NewTriviaHandler(service)
	r.HandleFunc("/api/trivia", api.Create).Methods(http.MethodPost)
	r.HandleFunc("/api/trivia/generate", api.Generate).Methods(http.MethodPost)
	r.HandleFunc("/api/trivia/{id}", api.Get).Methods(http.MethodGet)

	r.HandleFunc("/ws", NewWSHandler(service, widget).ServeWS)
	return r
}
