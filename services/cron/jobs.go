package cron

import (
	"context"
	"log"
	"time"

	"github.com/cambfordable/api/utils/auth"
)

// PurgeExpiredTokens removes blacklist entries whose tokens have expired.
// Expired JTIs can never validate again, so keeping them only grows the table.
func (m *CronManager) PurgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	blacklist := auth.NewBlacklistService(m.db)
	removed, err := blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		log.Printf("[CRON] purge_expired_tokens failed: %v", err)
		return
	}

	log.Printf("[CRON] purge_expired_tokens removed %d entries", removed)
}
