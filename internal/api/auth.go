package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/NebulaScout/TeamTrack/internal/authz"
)

func getAuthorization(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")

	token := strings.Split(header, " ")
	if len(token) != 2 || token[0] != "Bearer" {
		return "", errors.New("invalid token")
	}

	return token[1], nil
}

// actorFromRequest resolves the bearer token to a user and builds the
// evaluator's view of them: id plus the flat role set across memberships.
func (a *API) actorFromRequest(r *http.Request) (authz.Actor, error) {
	token, err := getAuthorization(r)
	if err != nil {
		return authz.Actor{}, err
	}

	user, err := a.db.UserForToken(token)
	if err != nil {
		return authz.Actor{}, errors.New("token not authorized")
	}

	roleNames, err := a.db.RoleNamesOf(user.ID)
	if err != nil {
		return authz.Actor{}, err
	}

	return authz.Actor{ID: user.ID, Roles: roleNames}, nil
}
