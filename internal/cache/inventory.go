package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PostsListKey       = "posts:list"
	BlacklistKeyPrefix = "blacklist:%s"
)

const (
	UserTTL      = 5 * time.Minute
	PostsListTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePosts drops the cached post listing after any post mutation.
func InvalidatePosts(ctx context.Context) {
	Invalidate(ctx, PostsListKey)
}
