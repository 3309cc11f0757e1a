package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/NebulaScout/TeamTrack/internal/db"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// serviceError maps the typed errors the core exposes onto status codes.
func (a *API) serviceError(w http.ResponseWriter, err error) {
	log.Println(err.Error())

	switch {
	case db.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case db.IsDuplicateMembership(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case db.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "operation failed", http.StatusInternalServerError)
	}
}

func (a *API) unauthorized(w http.ResponseWriter, err error) {
	log.Println(err.Error())
	http.Error(w, err.Error(), http.StatusUnauthorized)
}

func (a *API) forbidden(w http.ResponseWriter) {
	http.Error(w, "permission denied", http.StatusForbidden)
}
