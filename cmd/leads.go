package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/briefing-service/internal/model"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List leads in the local briefing store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("brief"); err != nil {
			return err
		}

		env, err := initBriefing(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Leads == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Salesforce is configured; briefings are stored on CRM records.")
			return nil
		}

		records, err := env.Leads.List(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "list leads")
		}
		return printLeads(cmd.OutOrStdout(), records)
	},
}

func printLeads(out io.Writer, records []model.BriefingRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No leads stored yet.")
		return nil
	}

	withBriefing := 0
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEAD ID\tCOMPANY\tSTATUS\tBRIEFING\tUPDATED")
	for _, r := range records {
		has := "no"
		if r.HasBriefing() {
			has = "yes"
			withBriefing++
		}
		updated := "-"
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.LeadID, r.Company, r.Status, has, updated)
	}
	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "flush leads table")
	}
	fmt.Fprintf(out, "\n%d leads, %d with briefings\n", len(records), withBriefing)
	return nil
}

func init() {
	rootCmd.AddCommand(leadsCmd)
}
