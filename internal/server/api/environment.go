package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/kathputli/internal/environment"
)

// EnvironmentController is the part of the running puppet that owns the
// environment state.
type EnvironmentController interface {
	Environment() environment.State
	Post(ev environment.Event) bool
}

// EnvironmentHandler serves GET and POST /api/environment.
type EnvironmentHandler struct {
	ctrl EnvironmentController
}

// NewEnvironmentHandler creates an EnvironmentHandler for ctrl.
func NewEnvironmentHandler(ctrl EnvironmentController) *EnvironmentHandler {
	return &EnvironmentHandler{ctrl: ctrl}
}

type environmentResponse struct {
	AirIndex    int     `json:"air_index"`
	Temperature float64 `json:"temperature"`
	Head        string  `json:"head"`
	Body        string  `json:"body"`
	Advisory    string  `json:"advisory,omitempty"`
}

type eventRequest struct {
	Event string `json:"event"`
}

type eventResponse struct {
	Queued string              `json:"queued"`
	State  environmentResponse `json:"state"`
}

func describe(s environment.State) environmentResponse {
	_, text := environment.Advisory(s)
	return environmentResponse{
		AirIndex:    s.AirIndex,
		Temperature: s.Temperature,
		Head:        environment.SelectHeadSprite(s),
		Body:        environment.SelectBodySprite(s),
		Advisory:    text,
	}
}

func (h *EnvironmentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, describe(h.ctrl.Environment()))
	case http.MethodPost:
		h.post(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// post queues an event. It applies before the next frame, so the returned
// state is the one in effect now.
func (h *EnvironmentHandler) post(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ev, err := environment.ParseEvent(req.Event)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !h.ctrl.Post(ev) {
		writeError(w, http.StatusServiceUnavailable, "Event queue full")
		return
	}

	writeJSON(w, http.StatusAccepted, eventResponse{Queued: string(ev), State: describe(h.ctrl.Environment())})
}
