package app

import (
	"github.com/taskforge/taskforge/internal/config"
	"github.com/taskforge/taskforge/internal/ratelimit"
	"github.com/taskforge/taskforge/internal/services"
)

func newRateLimiter() *ratelimit.Limiter {
	cfg := config.Global().RateLimit

	return ratelimit.New(map[string]ratelimit.Limit{
		services.BucketTaskMutations: {
			Rate:   cfg.TaskRate,
			Window: cfg.Window,
			Burst:  cfg.TaskBurst,
		},
		services.BucketCommentMutations: {
			Rate:   cfg.CommentRate,
			Window: cfg.Window,
			Burst:  cfg.CommentBurst,
		},
		services.BucketPreferences: {
			Rate:   cfg.PreferencesRate,
			Window: cfg.Window,
			Burst:  cfg.PreferencesBurst,
		},
		services.BucketChatMutations: {
			Rate:   cfg.ChatRate,
			Window: cfg.Window,
			Burst:  cfg.ChatBurst,
		},
		services.BucketChatSend: {
			Rate:   cfg.ChatSendRate,
			Window: cfg.Window,
			Burst:  cfg.ChatSendBurst,
		},
	})
}
