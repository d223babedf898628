package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

// MemoryRepo garde les posts en RAM (APP_ENV=local, tests). Rien n'est persisté.
type MemoryRepo struct {
	mu    sync.RWMutex
	posts map[string]domain.Post
	seq   map[string]uint64
	next  uint64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		posts: make(map[string]domain.Post),
		seq:   make(map[string]uint64),
	}
}

var _ ports.PostRepository = (*MemoryRepo)(nil)

func (r *MemoryRepo) Save(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.posts[post.ID] = *post
	if _, ok := r.seq[post.ID]; !ok {
		r.next++
		r.seq[post.ID] = r.next
	}
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]*domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, &p)
	}

	// Plus récent d'abord ; à date égale, l'ordre d'insertion départage
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return r.seq[posts[i].ID] > r.seq[posts[j].ID]
	})
	return posts, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[postID]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, postID)
	delete(r.seq, postID)
	return nil
}
