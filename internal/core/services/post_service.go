package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

type service struct {
	repo      ports.PostRepository
	publisher ports.EventPublisher
	now       func() time.Time
}

func NewPostService(repo ports.PostRepository, pub ports.EventPublisher) ports.PostService {
	return &service{repo: repo, publisher: pub, now: time.Now}
}

func (s *service) CreatePost(ctx context.Context, body string) (*domain.Post, error) {
	post, err := domain.NewPost(uuid.NewString(), body, s.now())
	if err != nil {
		return nil, err
	}

	// 1. Sauvegarde (source of truth)
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}

	// 2. Événement best effort : la donnée est déjà sauvée, on ne fait pas échouer la requête
	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		slog.Warn("Failed to publish post.created", "post_id", post.ID, "error", err)
	}

	return post, nil
}

func (s *service) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

func (s *service) DeletePost(ctx context.Context, postID string) error {
	if postID == "" {
		return domain.ErrPostNotFound
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	if err := s.publisher.PublishPostDeleted(ctx, postID); err != nil {
		slog.Warn("Failed to publish post.deleted", "post_id", postID, "error", err)
	}
	return nil
}
