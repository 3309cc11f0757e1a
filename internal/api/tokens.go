package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NebulaScout/TeamTrack/internal/db"
)

type addTokenRequestBody struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
}

// handleAddToken issues an API token for a user. Guarded by the master
// token, not by the role system: token issuance is bootstrap, not a
// permissioned resource.
func (a *API) handleAddToken(w http.ResponseWriter, r *http.Request) {
	token, err := getAuthorization(r)
	if err != nil {
		a.unauthorized(w, err)
		return
	}

	if token != a.masterToken {
		a.unauthorized(w, errors.New("invalid token"))
		return
	}

	body := &addTokenRequestBody{}
	err = json.NewDecoder(r.Body).Decode(body)
	if err != nil || body.Token == "" || body.UserID == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if _, err := a.db.GetUserByID(body.UserID); err != nil {
		a.serviceError(w, err)
		return
	}

	savedToken := &db.Token{Token: body.Token, UserID: body.UserID}
	if err := a.db.CreateToken(savedToken); err != nil {
		log.Println(err.Error())
		http.Error(w, "operation failed", http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "Token created"})
}
