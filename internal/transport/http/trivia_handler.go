package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"chat-trivia-service/internal/app"
	"chat-trivia-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// TriviaHandler serves the REST side: storing sets parsed from chat text,
// generating sets and reading them back.
type TriviaHandler struct {
	service  *app.TriviaService
	validate *validator.Validate
}

func NewTriviaHandler(service *app.TriviaService) *TriviaHandler {
	return &TriviaHandler{service: service, validate: validator.New()}
}

type createRequest struct {
	Text string `json:"text" validate:"required"`
}

type generateRequest struct {
	Topic string `json:"topic" validate:"required,max=200"`
	Count int    `json:"count" validate:"omitempty,min=1,max=20"`
}

type createResponse struct {
	ID      string           `json:"id"`
	Message string           `json:"message"`
	Set     domain.TriviaSet `json:"set"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const invalidFormatMessage = "Error: Invalid trivia set format"

// Create stores the trivia set found in the request text.
func (h *TriviaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	set, err := h.service.SaveFromText(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: set.ID, Message: "Trivia set created successfully!", Set: set})
}

// Generate asks the model for a new set about a topic.
func (h *TriviaHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !h.decode(w, r, &req) {
		return
	}
	set, err := h.service.Generate(r.Context(), req.Topic, req.Count)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{ID: set.ID, Message: "Trivia set created successfully!", Set: set})
}

// Get returns a stored set.
func (h *TriviaHandler) Get(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.GetSet(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *TriviaHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoJSON), errors.Is(err, domain.ErrInvalidTriviaSet), errors.Is(err, domain.ErrEmptyTriviaSet):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: invalidFormatMessage})
	case errors.Is(err, domain.ErrTriviaSetNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrGeneratorDisabled):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		log.Printf("trivia request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}
