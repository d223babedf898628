package ports

import (
	"context"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
)

// PostAPI est le client de l'API distante utilisé par le store.
// Les erreurs sont des *domain.NetworkError ou *domain.ServerError.
type PostAPI interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	CreatePost(ctx context.Context, body string) (*domain.Post, error)
	DeletePost(ctx context.Context, postID string) error
}

type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	// List retourne les posts du plus récent au plus ancien
	List(ctx context.Context) ([]*domain.Post, error)
	// Delete retourne domain.ErrPostNotFound si l'id n'existe pas
	Delete(ctx context.Context, postID string) error
}

type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *domain.Post) error
	PublishPostDeleted(ctx context.Context, postID string) error
}
