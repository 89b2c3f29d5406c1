package sink

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/config"
	"github.com/sells-group/briefing-service/internal/store"
	"github.com/sells-group/briefing-service/pkg/salesforce"
)

// New selects the sink once at startup: CRM when sf is non-nil, the local
// store otherwise. The returned cleanup releases the store.
func New(ctx context.Context, cfg *config.Config, sf salesforce.Client) (Sink, func(), error) {
	if sf != nil {
		zap.L().Info("sink: persisting briefings to CRM",
			zap.String("object", cfg.Salesforce.Object),
			zap.String("field", cfg.Salesforce.BriefingField),
		)
		crm := NewCRM(sf, CRMConfig{
			Object:        cfg.Salesforce.Object,
			BriefingField: cfg.Salesforce.BriefingField,
			Timeout:       time.Duration(cfg.Salesforce.TimeoutSecs) * time.Second,
		})
		return crm, func() {}, nil
	}

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	zap.L().Info("sink: persisting briefings locally", zap.String("driver", cfg.Store.Driver))
	return NewLocal(st), func() { _ = st.Close() }, nil
}
