package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/briefing"
	"github.com/sells-group/briefing-service/internal/intel"
	"github.com/sells-group/briefing-service/internal/leadctx"
	"github.com/sells-group/briefing-service/internal/llm"
	"github.com/sells-group/briefing-service/internal/news"
	"github.com/sells-group/briefing-service/internal/pipeline"
	"github.com/sells-group/briefing-service/internal/scrape"
	"github.com/sells-group/briefing-service/internal/server"
	"github.com/sells-group/briefing-service/internal/sink"
	sfpkg "github.com/sells-group/briefing-service/pkg/salesforce"
)

// briefingEnv holds the pipeline and the resources the serve, brief and
// leads commands share.
type briefingEnv struct {
	Pipeline *pipeline.Pipeline
	Contexts *leadctx.Store
	Leads    server.LeadLister // nil when briefings go to the CRM
	cleanup  func()
}

// Close releases resources held by the environment.
func (be *briefingEnv) Close() {
	if be.cleanup != nil {
		be.cleanup()
	}
}

// initBriefing builds every component from cfg. Missing credentials degrade
// the matching component; only a broken store or an unreadable Salesforce
// key fails.
// Callers should defer env.Close().
func initBriefing(ctx context.Context) (*briefingEnv, error) {
	sfClient, err := initSalesforce()
	if err != nil {
		return nil, err
	}

	s, cleanup, err := sink.New(ctx, cfg, sfClient)
	if err != nil {
		return nil, eris.Wrap(err, "init sink")
	}

	completer, err := llm.New(ctx, cfg)
	if err != nil {
		cleanup()
		return nil, eris.Wrap(err, "init llm")
	}

	contexts := leadctx.Load(ctx, cfg)
	agg := intel.NewAggregator(scrape.NewExtractor(cfg.Web), news.New(cfg))
	gen := briefing.NewGenerator(completer, cfg.LLM.MaxTokens, time.Duration(cfg.LLM.TimeoutSecs)*time.Second)

	env := &briefingEnv{
		Pipeline: pipeline.New(agg, contexts, gen, s),
		Contexts: contexts,
		cleanup:  cleanup,
	}
	if local, ok := s.(*sink.Local); ok {
		env.Leads = local.Store()
	}

	zap.L().Info("briefing environment ready",
		zap.String("persistence_target", string(s.Target())),
		zap.Bool("llm_configured", gen.Configured()),
		zap.Int("contexts", contexts.Len()),
		zap.String("context_source", contexts.Source()),
	)
	return env, nil
}

// initSalesforce returns nil when Salesforce credentials are incomplete.
// JWT bearer auth is preferred; the username-password flow is the fallback.
// A rejected login does not fail start-up.
func initSalesforce() (sfpkg.Client, error) {
	if !cfg.SalesforceConfigured() {
		zap.L().Info("salesforce not configured, briefings go to the local store")
		return nil, nil
	}

	sc := cfg.Salesforce
	creds := salesforce.Creds{
		Domain:      sc.LoginURL,
		Username:    sc.Username,
		ConsumerKey: sc.ClientID,
	}
	if cfg.SalesforceJWT() {
		pemData, err := os.ReadFile(sc.KeyPath)
		if err != nil {
			return nil, eris.Wrap(err, "read salesforce JWT private key")
		}
		creds.ConsumerRSAPem = string(pemData)
	} else {
		creds.ConsumerSecret = sc.ClientSecret
		creds.Password = sc.Password
		creds.SecurityToken = sc.SecurityToken
	}

	opts := []sfpkg.ClientOption{
		sfpkg.WithTimeout(time.Duration(sc.TimeoutSecs) * time.Second),
		sfpkg.WithRateLimit(sc.RateLimit),
	}
	client, err := sfpkg.Connect(creds, opts...)
	if err != nil {
		// Stay in CRM mode; each request logs in again and reports a failed
		// write until the org accepts the credentials.
		zap.L().Error("salesforce login failed, CRM writes will fail until it succeeds", zap.Error(err))
	}
	return client, nil
}
