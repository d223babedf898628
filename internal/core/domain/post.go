package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxBodyLength borne la taille d'un message (en runes).
const MaxBodyLength = 1000

// Post est un message du tableau. ID et CreatedAt sont attribués par l'API distante.
type Post struct {
	ID        string
	Body      string
	CreatedAt time.Time
}

// NewPost construit un post côté serveur : l'identité et la date sont fixées ICI, jamais par le client.
func NewPost(id, body string, now time.Time) (*Post, error) {
	clean, err := ValidateBody(body)
	if err != nil {
		return nil, err
	}
	return &Post{
		ID:        id,
		Body:      clean,
		CreatedAt: now.UTC(),
	}, nil
}

// ValidateBody normalise le texte saisi et rejette les messages vides ou trop longs.
func ValidateBody(body string) (string, error) {
	clean := strings.TrimSpace(body)
	if clean == "" {
		return "", ErrEmptyBody
	}
	if utf8.RuneCountInString(clean) > MaxBodyLength {
		return "", ErrBodyTooLong
	}
	return clean, nil
}

// ClonePosts copie une collection pour qu'aucun consommateur ne partage le slice du store.
func ClonePosts(posts []Post) []Post {
	out := make([]Post, len(posts))
	copy(out, posts)
	return out
}
