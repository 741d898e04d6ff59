package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/kathputli/internal/puppet"
	"github.com/ayusman/kathputli/internal/rig"
	"github.com/ayusman/kathputli/internal/store"
)

// ProfileHandler handles HTTP requests for calibration profiles.
//
//	GET    /api/profiles
//	POST   /api/profiles
//	GET    /api/profiles/{id}
//	PUT    /api/profiles/{id}
//	DELETE /api/profiles/{id}
//	POST   /api/profiles/{id}/activate
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a ProfileHandler backed by s.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// ServeHTTP routes collection, item and activate requests.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/activate"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, id)
		return
	}

	if strings.Contains(path, "/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, path)
	case http.MethodPut:
		h.update(w, r, path)
	case http.MethodDelete:
		h.delete(w, r, path)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type profileRequest struct {
	Name   string         `json:"name"`
	Rig    *rig.Config    `json:"rig,omitempty"`
	Render *puppet.Config `json:"render,omitempty"`
}

type profileResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Active    bool          `json:"active"`
	Rig       rig.Config    `json:"rig"`
	Render    puppet.Config `json:"render"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

func toResponse(p *store.Profile, activeID string) profileResponse {
	return profileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Active:    p.ID == activeID,
		Rig:       p.Rig,
		Render:    p.Render,
		CreatedAt: formatTime(p.CreatedAt),
		UpdatedAt: formatTime(p.UpdatedAt),
	}
}

func (h *ProfileHandler) activeID() string {
	id, _ := h.store.Settings().Get(store.KeyActiveProfile)
	return id
}

func validateProfile(p *store.Profile) string {
	if p.Name == "" {
		return "Name is required"
	}
	if err := p.Rig.Validate(); err != nil {
		return err.Error()
	}
	if err := p.Render.Validate(); err != nil {
		return err.Error()
	}
	return ""
}

func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	active := h.activeID()
	resp := listProfilesResponse{Profiles: make([]profileResponse, 0, len(profiles))}
	for _, p := range profiles {
		resp.Profiles = append(resp.Profiles, toResponse(p, active))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p, h.activeID()))
}

func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p := &store.Profile{
		Name:   req.Name,
		Rig:    rig.DefaultConfig(),
		Render: puppet.DefaultConfig(),
	}
	if req.Rig != nil {
		p.Rig = *req.Rig
	}
	if req.Render != nil {
		p.Render = *req.Render
	}
	if msg := validateProfile(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if _, err := h.store.Profiles().GetByName(p.Name); err == nil {
		writeError(w, http.StatusConflict, "Profile name already exists")
		return
	}

	if err := h.store.Profiles().Create(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(p, h.activeID()))
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Rig != nil {
		p.Rig = *req.Rig
	}
	if req.Render != nil {
		p.Render = *req.Render
	}
	if msg := validateProfile(p); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Profiles().Update(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p, h.activeID()))
}

func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().Delete(id); err != nil {
		h.storeError(w, err, "Failed to delete profile")
		return
	}
	if h.activeID() == id {
		h.store.Settings().Delete(store.KeyActiveProfile)
	}
	w.WriteHeader(http.StatusNoContent)
}

// activate marks a profile to be used from the next start.
func (h *ProfileHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get profile")
		return
	}
	if err := h.store.Settings().Set(store.KeyActiveProfile, p.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to activate profile")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p, p.ID))
}

func (h *ProfileHandler) storeError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}
