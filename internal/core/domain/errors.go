package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// --- ERREURS DU DOMAINE ---
var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidPost  = errors.New("invalid post")
	ErrEmptyBody    = fmt.Errorf("%w: body must not be empty", ErrInvalidPost)
	ErrBodyTooLong  = fmt.Errorf("%w: body must be at most %d characters", ErrInvalidPost, MaxBodyLength)
)

// NetworkError : la requête n'a jamais atteint l'API (DNS, connexion refusée, timeout...).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: cannot reach post API: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError : l'API a répondu avec un statut non-2xx.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: server returned %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap permet errors.Is(err, ErrPostNotFound) sur un 404.
func (e *ServerError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrPostNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidPost
	}
	return nil
}

// UserMessage convertit une erreur en texte affichable dans la barre de statut.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var netErr *NetworkError
	var srvErr *ServerError
	switch {
	case errors.As(err, &netErr):
		return "Network error: the post server could not be reached"
	case errors.Is(err, ErrPostNotFound):
		return "The post no longer exists on the server"
	case errors.As(err, &srvErr):
		if srvErr.Message != "" {
			return fmt.Sprintf("Server error (%d): %s", srvErr.StatusCode, srvErr.Message)
		}
		return fmt.Sprintf("Server error (%d)", srvErr.StatusCode)
	}
	return err.Error()
}
