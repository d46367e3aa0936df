package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	regexflowclient "github.com/GregMSThompson/regexflow/internal/client/regexflow"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/internal/workflow"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

// commandContext carries the default logger so client and engine log through it.
func commandContext(cmd *cobra.Command) context.Context {
	return logger.ToContext(cmd.Context(), slog.Default())
}

func newClient() (*regexflowclient.Client, error) {
	token := strings.TrimSpace(viper.GetString("auth.token"))
	if token == "" {
		return nil, fmt.Errorf("no token: pass --token, set REGEXFLOW_AUTH_TOKEN or auth.token in the config file")
	}
	return regexflowclient.NewClient(viper.GetString("api.url"), regexflowclient.NewSession(token), nil), nil
}

func newEngine(role models.Role) (*regexflowclient.Client, *workflow.Engine, error) {
	c, err := newClient()
	if err != nil {
		return nil, nil, err
	}
	e := workflow.NewEngine(c, role, workflow.WithStateListener(func(op workflow.Op, st workflow.RequestState) {
		slog.Debug("request state", "op", string(op), "phase", st.Phase.String(), "reason", st.Reason)
	}))
	return c, e, nil
}

func printTemplates(w io.Writer, templates []*models.Template) {
	if len(templates) == 0 {
		fmt.Fprintln(w, "No templates found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBANK\tTYPE\tSTATUS\tUPDATED\tPATTERN")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.BankName, t.SmsType, t.Status, t.UpdatedAt.Format("2006-01-02 15:04"), truncate(t.Pattern, 60))
	}
	_ = tw.Flush()
}

func printTemplate(w io.Writer, t *models.Template) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s:\t%s\n", k, v)
		}
	}
	row("ID", t.ID)
	row("Bank", t.BankName)
	row("Type", string(t.SmsType))
	row("Status", string(t.Status))
	row("Pattern", t.Pattern)
	row("Sample", t.SampleSms)
	row("Description", t.Description)
	row("Created by", t.CreatedBy)
	row("Approved by", t.ApprovedBy)
	row("Reviewed by", t.ReviewedBy)
	row("Comments", t.ReviewComments)
	row("Rejection", t.RejectionReason)
	_ = tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
