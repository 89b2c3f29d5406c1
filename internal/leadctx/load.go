package leadctx

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/config"
)

// Load builds the context store from Notion when configured, otherwise from
// the fixture file. A source that cannot be read degrades to an empty store;
// the service still runs and every lookup reports not found.
func Load(ctx context.Context, cfg *config.Config) *Store {
	log := zap.L()

	if cfg.NotionConfigured() {
		q := NewNotionQuerier(cfg.Notion.Token, time.Duration(cfg.Notion.TimeoutSecs)*time.Second)
		s, err := LoadNotion(ctx, q, cfg.Notion.ContextDB)
		if err == nil {
			log.Info("leadctx: loaded contexts from notion", zap.Int("count", s.Len()))
			return s
		}
		log.Warn("leadctx: notion load failed, falling back to file",
			zap.String("path", cfg.Context.Path), zap.Error(err))
	} else {
		log.Info("leadctx: notion not configured, loading contexts from file",
			zap.String("path", cfg.Context.Path))
	}

	s, err := LoadFile(cfg.Context.Path)
	if err != nil {
		log.Warn("leadctx: context file unavailable, using empty store",
			zap.String("path", cfg.Context.Path), zap.Error(err))
		return Empty("none")
	}
	log.Info("leadctx: loaded contexts from file", zap.Int("count", s.Len()))
	return s
}
