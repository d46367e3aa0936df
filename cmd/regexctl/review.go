package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/regexflow/internal/models"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review submitted templates (checker)",
	}

	pending := &cobra.Command{
		Use:   "pending",
		Short: "List templates waiting for approval",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			templates, err := c.ListPending(commandContext(cmd))
			if err != nil {
				return err
			}
			printTemplates(cmd.OutOrStdout(), templates)
			return nil
		},
	}

	reviewed := &cobra.Command{
		Use:   "reviewed",
		Short: "List templates you reviewed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			all, _ := cmd.Flags().GetBool("all")
			templates, err := c.ListReviewed(commandContext(cmd), all)
			if err != nil {
				return err
			}
			printTemplates(cmd.OutOrStdout(), templates)
			return nil
		},
	}
	reviewed.Flags().Bool("all", false, "include every checker's reviews")

	active := &cobra.Command{
		Use:   "active",
		Short: "List ACTIVE templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			templates, err := c.ListActive(commandContext(cmd))
			if err != nil {
				return err
			}
			printTemplates(cmd.OutOrStdout(), templates)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template and its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			t, err := c.GetForReview(ctx, args[0])
			if err != nil {
				return err
			}
			entries, err := c.ReviewHistory(ctx, args[0])
			if err != nil {
				return err
			}
			printTemplate(cmd.OutOrStdout(), t)
			fmt.Fprintln(cmd.OutOrStdout())
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a PENDING_APPROVAL template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, engine, err := newEngine(models.RoleChecker)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			t, err := c.GetForReview(ctx, args[0])
			if err != nil {
				return err
			}
			comments, _ := cmd.Flags().GetString("comments")
			t, err = engine.Approve(ctx, t, comments)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s is %s.\n", t.ID, t.Status)
			return nil
		},
	}
	approve.Flags().String("comments", "", "review comments")

	reject := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a PENDING_APPROVAL template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, engine, err := newEngine(models.RoleChecker)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			t, err := c.GetForReview(ctx, args[0])
			if err != nil {
				return err
			}
			reason, _ := cmd.Flags().GetString("reason")
			t, err = engine.Reject(ctx, t, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s is %s.\n", t.ID, t.Status)
			return nil
		},
	}
	reject.Flags().String("reason", "", "rejection reason (required)")

	deprecate := &cobra.Command{
		Use:   "deprecate <id>",
		Short: "Retire an ACTIVE template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, engine, err := newEngine(models.RoleChecker)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			t, err := c.GetForReview(ctx, args[0])
			if err != nil {
				return err
			}
			t, err = engine.Deprecate(ctx, t)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s is %s.\n", t.ID, t.Status)
			return nil
		},
	}

	test := &cobra.Command{
		Use:   "test",
		Short: "Run a pattern against a sample SMS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPatternTest(cmd, models.RoleChecker)
		},
	}
	test.Flags().String("pattern", "", "regex pattern")
	test.Flags().String("sample", "", "sample SMS")

	cmd.AddCommand(pending, reviewed, active, show, approve, reject, deprecate, test)
	return cmd
}

func printHistory(w io.Writer, entries []*models.AuditEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tFROM\tTO\tBY\tCOMMENTS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04"), e.Action, e.PreviousStatus, e.NewStatus, e.PerformedBy, e.Comments)
	}
	_ = tw.Flush()
}

func printFields(w io.Writer, fields map[string]string) {
	if len(fields) == 0 {
		fmt.Fprintln(w, "  (no fields captured)")
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%s\n", k, fields[k])
	}
	_ = tw.Flush()
}
