package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

const (
	postsIndexKey = "board:posts"
	postKeyPrefix = "board:post:"
)

// RedisRepo : un hash par post + un sorted set (score = created_at en ms) pour l'ordre.
type RedisRepo struct {
	client *redis.Client
}

func NewRedisRepo(client *redis.Client) *RedisRepo {
	return &RedisRepo{client: client}
}

var _ ports.PostRepository = (*RedisRepo)(nil)

func postKey(id string) string { return postKeyPrefix + id }

func (r *RedisRepo) Save(ctx context.Context, post *domain.Post) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, postKey(post.ID),
		"id", post.ID,
		"body", post.Body,
		"created_at", post.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.ZAdd(ctx, postsIndexKey, redis.Z{
		Score:  float64(post.CreatedAt.UnixMilli()),
		Member: post.ID,
	})
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisRepo) List(ctx context.Context) ([]*domain.Post, error) {
	ids, err := r.client.ZRevRange(ctx, postsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Post{}, nil
	}

	// Un seul aller-retour pour hydrater tous les posts
	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, postKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	posts := make([]*domain.Post, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// Index orphelin (hash supprimé entre-temps) : on ignore
			continue
		}
		createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
		if err != nil {
			return nil, fmt.Errorf("post %s: bad created_at: %w", ids[i], err)
		}
		posts = append(posts, &domain.Post{
			ID:        ids[i],
			Body:      fields["body"],
			CreatedAt: createdAt,
		})
	}
	return posts, nil
}

func (r *RedisRepo) Delete(ctx context.Context, postID string) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, postKey(postID))
	pipe.ZRem(ctx, postsIndexKey, postID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
