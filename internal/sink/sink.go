// Package sink persists a generated briefing to exactly one target: the CRM
// when it is configured, the local store otherwise.
package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/store"
	"github.com/sells-group/briefing-service/pkg/salesforce"
)

// Sink writes a briefing and reports the outcome. It never returns an error;
// failures are carried in the PersistenceResult.
type Sink interface {
	Persist(ctx context.Context, leadID string, b *model.Briefing) model.PersistenceResult
	Target() model.Target
}

// CRMConfig configures the Salesforce sink.
type CRMConfig struct {
	Object        string
	BriefingField string
	Timeout       time.Duration
}

// CRM writes briefings to a long-text field on a Salesforce record.
type CRM struct {
	client salesforce.Client
	cfg    CRMConfig
}

// NewCRM creates a CRM sink.
func NewCRM(client salesforce.Client, cfg CRMConfig) *CRM {
	if cfg.Object == "" {
		cfg.Object = "Lead"
	}
	if cfg.BriefingField == "" {
		cfg.BriefingField = "AI_Pre_Call_Briefing__c"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &CRM{client: client, cfg: cfg}
}

// Target implements Sink.
func (c *CRM) Target() model.Target { return model.TargetCRM }

// Persist implements Sink.
func (c *CRM) Persist(ctx context.Context, leadID string, b *model.Briefing) model.PersistenceResult {
	log := zap.L().With(zap.String("lead_id", leadID), zap.String("target", string(model.TargetCRM)))
	res := model.PersistenceResult{Target: model.TargetCRM}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	lead, err := salesforce.FindLeadByID(ctx, c.client, c.cfg.Object, leadID)
	if err != nil {
		log.Error("sink: crm lookup failed", zap.Error(err))
		res.Detail = "CRM lookup failed"
		return res
	}
	if lead == nil {
		log.Warn("sink: crm record not found")
		res.Detail = "lead not found in CRM"
		return res
	}

	payload, err := json.Marshal(b)
	if err != nil {
		log.Error("sink: encode briefing", zap.Error(eris.Wrap(err, "sink: encode briefing")))
		res.Detail = "briefing could not be encoded"
		return res
	}

	if err := salesforce.UpdateLeadField(ctx, c.client, c.cfg.Object, leadID, c.cfg.BriefingField, string(payload)); err != nil {
		log.Error("sink: crm update failed", zap.Error(err))
		res.Detail = "CRM update failed"
		return res
	}

	log.Info("sink: crm record updated", zap.String("field", c.cfg.BriefingField))
	res.Success = true
	res.Detail = "updated " + c.cfg.Object + "." + c.cfg.BriefingField
	return res
}

// Local writes briefings to a store.Store.
type Local struct {
	store store.Store
}

// NewLocal creates a Local sink.
func NewLocal(s store.Store) *Local {
	return &Local{store: s}
}

// Target implements Sink.
func (l *Local) Target() model.Target { return model.TargetLocal }

// Store returns the backing store for read-only listings.
func (l *Local) Store() store.Store { return l.store }

// Persist implements Sink.
func (l *Local) Persist(ctx context.Context, leadID string, b *model.Briefing) model.PersistenceResult {
	log := zap.L().With(zap.String("lead_id", leadID), zap.String("target", string(model.TargetLocal)))
	res := model.PersistenceResult{Target: model.TargetLocal}

	if b == nil {
		res.Detail = "no briefing to persist"
		return res
	}

	rec, err := l.store.Upsert(ctx, leadID, *b)
	if err != nil {
		log.Error("sink: local store write failed", zap.Error(err))
		res.Detail = "local store write failed"
		return res
	}

	log.Info("sink: local record updated", zap.Time("updated_at", rec.UpdatedAt))
	res.Success = true
	res.Detail = "local record updated"
	return res
}
