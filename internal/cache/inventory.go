package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	UserByAccountPrefix  = "user:account:%d"
	PostKeyPrefix        = "post:%d"
	RecentPostsKeyPrefix = "posts:recent:%d:%d"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	RecentPostsTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserByAccountKey(accountID uint) string {
	return fmt.Sprintf(UserByAccountPrefix, accountID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// RecentPostsKey caches the first page of the feed only; cursor pages go to
// the database directly.
func RecentPostsKey(limit int, cursor uint) string {
	return fmt.Sprintf(RecentPostsKeyPrefix, limit, cursor)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID, accountID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, UserByAccountKey(accountID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateRecentPosts drops cached feed pages after a post mutation.
func InvalidateRecentPosts(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "posts:recent:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
