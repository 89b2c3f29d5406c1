// Package pipeline runs one briefing request end to end: validate, gather
// intelligence, look up lead context, generate, persist, respond.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/briefing"
	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/sink"
)

// Gatherer collects company intelligence. It never fails.
type Gatherer interface {
	Gather(ctx context.Context, domain string) model.CompanyIntelligence
}

// ContextLookup resolves a lead context id.
type ContextLookup interface {
	Lookup(contextID string) model.LeadContext
}

// Generator produces a validated briefing.
type Generator interface {
	Generate(ctx context.Context, intel model.CompanyIntelligence, lead model.LeadContext) (*model.Briefing, briefing.Meta, error)
}

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the webhook reply.
type Response struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Briefing *model.Briefing `json:"briefing,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`
}

// Metadata describes how a response was produced.
type Metadata struct {
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
	DatabaseUpdated       bool             `json:"database_updated"`
	ContextFound          bool             `json:"context_found"`
	RequestID             string           `json:"request_id"`
	PersistenceTarget     model.Target     `json:"persistence_target"`
	PersistenceDetail     string           `json:"persistence_detail,omitempty"`
	FallbackBriefing      bool             `json:"fallback_briefing"`
	ExtractionErrors      []model.ErrorTag `json:"extraction_errors"`
	NewsCount             int              `json:"news_count"`
}

// Pipeline wires the components of one briefing request.
type Pipeline struct {
	gatherer  Gatherer
	contexts  ContextLookup
	generator Generator
	sink      sink.Sink
}

// New creates a Pipeline.
func New(g Gatherer, contexts ContextLookup, gen Generator, s sink.Sink) *Pipeline {
	return &Pipeline{gatherer: g, contexts: contexts, generator: gen, sink: s}
}

// Target reports where briefings are persisted.
func (p *Pipeline) Target() model.Target {
	return p.sink.Target()
}

// Run executes one request. The returned Response is always non-nil; on
// failure it is an error response and err is a *model.Error whose kind
// callers map to a status code.
func (p *Pipeline) Run(ctx context.Context, req model.BriefingRequest) (*Response, error) {
	start := time.Now()
	requestID := uuid.New().String()
	meta := &Metadata{
		RequestID:         requestID,
		PersistenceTarget: p.sink.Target(),
		ExtractionErrors:  []model.ErrorTag{},
	}

	req, err := Validate(req, p.sink.Target() == model.TargetCRM)
	if err != nil {
		zap.L().Warn("pipeline: rejected request", zap.String("request_id", requestID), zap.Error(err))
		return p.fail(meta, start, err), err
	}

	log := zap.L().With(
		zap.String("request_id", requestID),
		zap.String("domain", req.CompanyDomain),
		zap.String("context_id", req.ContextID),
		zap.String("lead_id", req.LeadID),
	)
	log.Info("pipeline: starting briefing")

	// Outbound calls are bounded by their own timeouts, not by the caller.
	work := context.WithoutCancel(ctx)

	phase := func(name string, fn func()) {
		t := time.Now()
		fn()
		log.Info("pipeline: phase complete",
			zap.String("phase", name),
			zap.Int64("duration_ms", time.Since(t).Milliseconds()),
		)
	}

	var intel model.CompanyIntelligence
	phase("gather", func() { intel = p.gatherer.Gather(work, req.CompanyDomain) })
	meta.ExtractionErrors = intel.ExtractionErrors
	meta.NewsCount = len(intel.NewsItems)

	var lead model.LeadContext
	phase("context", func() { lead = p.contexts.Lookup(req.ContextID) })
	meta.ContextFound = lead.Found
	if !lead.Found {
		log.Warn("pipeline: lead context not found")
	}

	var (
		b       *model.Briefing
		genMeta briefing.Meta
		genErr  error
	)
	phase("generate", func() { b, genMeta, genErr = p.generator.Generate(work, intel, lead) })
	if genErr != nil {
		log.Error("pipeline: generation failed", zap.Error(genErr))
		return p.fail(meta, start, genErr), genErr
	}
	meta.FallbackBriefing = genMeta.Fallback

	var res model.PersistenceResult
	phase("persist", func() { res = p.sink.Persist(work, req.LeadID, b) })
	meta.DatabaseUpdated = res.Success
	meta.PersistenceDetail = res.Detail
	if !res.Success {
		log.Warn("pipeline: persistence failed, returning briefing anyway",
			zap.String("detail", res.Detail))
	}

	meta.ProcessingTimeSeconds = time.Since(start).Seconds()
	log.Info("pipeline: briefing complete",
		zap.Float64("processing_time_seconds", meta.ProcessingTimeSeconds),
		zap.Bool("database_updated", meta.DatabaseUpdated),
		zap.Bool("fallback_briefing", meta.FallbackBriefing),
	)

	return &Response{
		Status:   StatusSuccess,
		Message:  fmt.Sprintf("Successfully generated briefing for lead %s", req.LeadID),
		Briefing: b,
		Metadata: meta,
	}, nil
}

func (p *Pipeline) fail(meta *Metadata, start time.Time, err error) *Response {
	meta.ProcessingTimeSeconds = time.Since(start).Seconds()
	return &Response{
		Status:   StatusError,
		Message:  model.PublicMessage(err),
		Metadata: meta,
	}
}
