package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	TrendingTagsPrefix = "tags:trending:%d"
	AdminStatsKey      = "admin:stats"
	PromotionLockKey   = "lock:promotion"
	WSTicketPrefix     = "ws_ticket:%s"
	TokenBlacklistKey  = "blacklist:%s"
)

const (
	UserTTL         = 5 * time.Minute
	TrendingTagsTTL = 5 * time.Minute
	AdminStatsTTL   = time.Minute
	WSTicketTTL     = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func TrendingTagsKey(limit int) string {
	return fmt.Sprintf(TrendingTagsPrefix, limit)
}

func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketPrefix, ticket)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(TokenBlacklistKey, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, AdminStatsKey)
}

// InvalidateTrending drops every cached trending-tags page.
func InvalidateTrending(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "tags:trending:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
