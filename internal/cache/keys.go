package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	SkillKeyPrefix       = "skill:%d"
	OfferStatsKeyPrefix  = "offerstats:user:%d"
	BanStatusKeyPrefix   = "banstatus:user:%d"
	LeaderboardKeyPrefix = "leaderboard:xp"
)

const (
	UserTTL        = 5 * time.Minute
	SkillTTL       = 10 * time.Minute
	OfferStatsTTL  = 1 * time.Minute
	BanStatusTTL   = 1 * time.Minute
	LeaderboardTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SkillKey(skillID uint) string {
	return fmt.Sprintf(SkillKeyPrefix, skillID)
}

func OfferStatsKey(userID uint) string {
	return fmt.Sprintf(OfferStatsKeyPrefix, userID)
}

func BanStatusKey(userID uint) string {
	return fmt.Sprintf(BanStatusKeyPrefix, userID)
}

func LeaderboardKey() string {
	return LeaderboardKeyPrefix
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
	Invalidate(ctx, BanStatusKey(userID))
}

func InvalidateSkill(ctx context.Context, skillID uint) {
	Invalidate(ctx, SkillKey(skillID))
}

// InvalidateOfferStats drops both participants' cached stats after any
// offer mutation.
func InvalidateOfferStats(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		Invalidate(ctx, OfferStatsKey(id))
	}
}
