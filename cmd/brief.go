package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/briefing-service/internal/model"
	"github.com/sells-group/briefing-service/internal/pipeline"
)

var (
	briefDomain    string
	briefContextID string
	briefLeadID    string
)

var briefCmd = &cobra.Command{
	Use:     "brief",
	Short:   "Generate one briefing and print the JSON response",
	Example: `  briefing brief --domain acme.com --context ad_001_pos --lead lead_123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("brief"); err != nil {
			return err
		}

		env, err := initBriefing(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		resp, runErr := env.Pipeline.Run(cmd.Context(), model.BriefingRequest{
			CompanyDomain: briefDomain,
			ContextID:     briefContextID,
			LeadID:        briefLeadID,
		})
		if err := writeResponse(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		return runErr
	},
}

// writeResponse prints resp as indented JSON.
func writeResponse(w io.Writer, resp *pipeline.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return eris.Wrap(err, "write response")
	}
	return nil
}

func init() {
	briefCmd.Flags().StringVar(&briefDomain, "domain", "", "company domain (e.g. acme.com)")
	briefCmd.Flags().StringVar(&briefContextID, "context", "", "lead context id")
	briefCmd.Flags().StringVar(&briefLeadID, "lead", "", "lead id")
	_ = briefCmd.MarkFlagRequired("domain")
	_ = briefCmd.MarkFlagRequired("context")
	_ = briefCmd.MarkFlagRequired("lead")
	rootCmd.AddCommand(briefCmd)
}
