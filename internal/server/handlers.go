package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/pipeline"
)

const maxBodyBytes = 64 * 1024

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("server: encode response", zap.Error(err))
	}
}

// statusFor maps a pipeline failure to an HTTP status code.
func statusFor(err error) int {
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindGenerationUnavailable, model.KindGenerationMalformed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req model.BriefingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, pipeline.Response{
			Status:  pipeline.StatusError,
			Message: "invalid request body",
		})
		return
	}

	resp, err := s.runner.Run(r.Context(), req)
	if s.metrics != nil {
		s.metrics.Record(resp, err)
	}
	if err != nil {
		respondJSON(w, statusFor(err), resp)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status        string          `json:"status"`
	Service       string          `json:"service"`
	Version       string          `json:"version"`
	Configuration map[string]bool `json:"configuration"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: ServiceName,
		Version: s.version,
		Configuration: map[string]bool{
			"llm_configured":        s.cfg.LLMConfigured(),
			"news_api_configured":   s.cfg.NewsConfigured(),
			"salesforce_configured": s.cfg.SalesforceConfigured(),
			"notion_configured":     s.cfg.NotionConfigured(),
		},
	})
}

type serviceStatus struct {
	Configured bool   `json:"configured"`
	Status     string `json:"status"`
	Provider   string `json:"provider,omitempty"`
}

type configResponse struct {
	Services          map[string]serviceStatus `json:"services"`
	PersistenceTarget model.Target             `json:"persistence_target"`
	Recommendations   []string                 `json:"recommendations"`
}

func newServiceStatus(configured bool, provider, fallback string) serviceStatus {
	st := serviceStatus{Configured: configured, Status: "ready", Provider: provider}
	if !configured {
		st.Status = fallback
	}
	return st
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	llm := s.cfg.LLMConfigured()
	news := s.cfg.NewsConfigured()
	sf := s.cfg.SalesforceConfigured()
	notion := s.cfg.NotionConfigured()

	recs := []string{}
	if !llm {
		recs = append(recs, "Set BRIEFING_ANTHROPIC_KEY (or BRIEFING_GEMINI_KEY with BRIEFING_LLM_PROVIDER=gemini) for AI briefing generation")
	}
	if !news {
		recs = append(recs, "Set BRIEFING_NEWS_KEY (or BRIEFING_JINA_KEY with BRIEFING_NEWS_PROVIDER=jina) for company news integration")
	}
	if !sf {
		recs = append(recs, "Configure Salesforce credentials for CRM integration")
	}

	respondJSON(w, http.StatusOK, configResponse{
		Services: map[string]serviceStatus{
			"llm":        newServiceStatus(llm, s.cfg.LLM.Provider, "not configured, placeholder briefings"),
			"news_api":   newServiceStatus(news, s.cfg.News.Provider, "not configured"),
			"salesforce": newServiceStatus(sf, "", "using local database"),
			"notion":     newServiceStatus(notion, "", "using context file"),
		},
		PersistenceTarget: s.runner.Target(),
		Recommendations:   recs,
	})
}

type leadView struct {
	model.BriefingRecord
	HasBriefing bool `json:"has_briefing"`
}

type leadsResponse struct {
	TotalLeads         int        `json:"total_leads"`
	LeadsWithBriefings int        `json:"leads_with_briefings"`
	Leads              []leadView `json:"leads"`
	Message            string     `json:"message,omitempty"`
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	if s.leads == nil {
		respondJSON(w, http.StatusOK, leadsResponse{
			Leads:   []leadView{},
			Message: "briefings are stored in the CRM",
		})
		return
	}

	records, err := s.leads.List(r.Context())
	if err != nil {
		zap.L().Error("server: list leads", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  pipeline.StatusError,
			"message": "failed to read leads database",
		})
		return
	}

	out := leadsResponse{TotalLeads: len(records), Leads: make([]leadView, 0, len(records))}
	for _, rec := range records {
		has := rec.HasBriefing()
		if has {
			out.LeadsWithBriefings++
		}
		out.Leads = append(out.Leads, leadView{BriefingRecord: rec, HasBriefing: has})
	}
	if len(records) == 0 {
		out.Message = "no leads stored yet"
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.metrics == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"status":  pipeline.StatusError,
			"message": "metrics are not enabled",
		})
		return
	}
	respondJSON(w, http.StatusOK, s.metrics.Snapshot())
}
