package ports

import (
	"context"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
)

// Operation est le "future" retourné par chaque action du store.
type Operation interface {
	Done() <-chan struct{}
	Wait(ctx context.Context) error
	Err() error
}

// PostStore est le contrat consommé par la couche de présentation.
type PostStore interface {
	Snapshot() domain.Snapshot
	Posts() []domain.Post
	Loading() bool
	Err() string

	Mount(ctx context.Context) Operation
	Refresh(ctx context.Context) Operation
	AddPost(ctx context.Context, body string) Operation
	DeletePost(ctx context.Context, id string) Operation

	// Notifications après chaque changement d'état (pour le re-rendu)
	Subscribe(buffer int) (<-chan domain.Snapshot, func())
}

// PostService est la logique de l'API distante (côté serveur).
type PostService interface {
	CreatePost(ctx context.Context, body string) (*domain.Post, error)
	ListPosts(ctx context.Context) ([]*domain.Post, error)
	DeletePost(ctx context.Context, postID string) error
}
