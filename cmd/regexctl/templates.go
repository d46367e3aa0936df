package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/internal/workflow"
)

func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Draft, test and submit your templates (maker)",
	}
	cmd.AddCommand(
		templatesListCmd(),
		templatesShowCmd(),
		templatesCreateCmd(),
		templatesEditCmd(),
		templatesSubmitCmd(),
		templatesDeleteCmd(),
		templatesHistoryCmd(),
		templatesCheckCmd(),
		templatesTestCmd(),
	)
	return cmd
}

func addDraftFlags(cmd *cobra.Command) {
	cmd.Flags().String("bank", "", "bank name")
	cmd.Flags().String("type", "", "SMS type (DEBIT, CREDIT, BILL)")
	cmd.Flags().String("pattern", "", "regex pattern with named groups")
	cmd.Flags().String("sample", "", "sample SMS the pattern should match")
	cmd.Flags().String("description", "", "free-text description")
}

// applyDraftFlags copies only the flags the user set, so edits keep untouched fields.
func applyDraftFlags(cmd *cobra.Command, d *workflow.Draft) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("bank", &d.BankName)
	set("pattern", &d.Pattern)
	set("sample", &d.SampleSms)
	set("description", &d.Description)
	if cmd.Flags().Changed("type") {
		v, _ := cmd.Flags().GetString("type")
		d.SmsType = models.SmsType(strings.ToUpper(v))
	}
}

func templatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates you created",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			templates, err := c.ListMyTemplates(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to list templates: %w", err)
			}
			printTemplates(cmd.OutOrStdout(), templates)
			return nil
		},
	}
}

func templatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			t, err := c.GetTemplate(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			printTemplate(cmd.OutOrStdout(), t)
			return nil
		},
	}
}

func templatesCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save a new DRAFT template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, engine, err := newEngine(models.RoleMaker)
			if err != nil {
				return err
			}
			d := &workflow.Draft{SmsType: models.SmsDebit}
			applyDraftFlags(cmd, d)
			t, err := engine.SaveDraft(commandContext(cmd), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft %s saved.\n", t.ID)
			return nil
		},
	}
	addDraftFlags(cmd)
	return cmd
}

func templatesEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a DRAFT template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, engine, err := newEngine(models.RoleMaker)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			t, err := c.GetTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			d, err := engine.Edit(t)
			if err != nil {
				return err
			}
			applyDraftFlags(cmd, d)
			if _, err := engine.SaveDraft(ctx, d); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft %s updated.\n", d.ID)
			return nil
		},
	}
	addDraftFlags(cmd)
	return cmd
}

func templatesSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit [id]",
		Short: "Submit a DRAFT for approval, creating it first when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, engine, err := newEngine(models.RoleMaker)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			d := &workflow.Draft{SmsType: models.SmsDebit}
			if len(args) == 1 {
				t, err := c.GetTemplate(ctx, args[0])
				if err != nil {
					return err
				}
				if d, err = engine.Edit(t); err != nil {
					return err
				}
			}
			applyDraftFlags(cmd, d)

			t, err := engine.Submit(ctx, d)
			var partial *workflow.PartialSubmitError
			if errors.As(err, &partial) {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved as draft %s but not submitted. Retry with: regexctl templates submit %s\n",
					partial.Template.ID, partial.Template.ID)
				return partial.Err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s is %s.\n", t.ID, t.Status)
			return nil
		},
	}
	addDraftFlags(cmd)
	return cmd
}

func templatesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a DRAFT template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, engine, err := newEngine(models.RoleMaker)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			t, err := c.GetTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			if err := engine.Delete(ctx, t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s deleted.\n", t.ID)
			return nil
		},
	}
}

func templatesHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the audit trail of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			entries, err := c.TemplateHistory(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

func templatesCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-duplicate",
		Short: "Check whether a live template already uses a pattern",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, engine, err := newEngine(models.RoleMaker)
			if err != nil {
				return err
			}
			pattern, _ := cmd.Flags().GetString("pattern")
			exclude, _ := cmd.Flags().GetString("exclude")
			check, err := engine.CheckDuplicate(commandContext(cmd), pattern, exclude)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case check.Exists:
				fmt.Fprintf(out, "Duplicate (%s): %s\n", check.Mode, check.Message)
			case check.Mode == workflow.BestEffortCheck:
				fmt.Fprintln(out, "No duplicate among your own templates. The server lookup was unavailable, so other makers' templates were not checked.")
			default:
				fmt.Fprintln(out, "No live template uses this pattern.")
			}
			return nil
		},
	}
	cmd.Flags().String("pattern", "", "pattern text to look up")
	cmd.Flags().String("exclude", "", "template id to ignore")
	return cmd
}

func templatesTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run a pattern against a sample SMS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPatternTest(cmd, models.RoleMaker)
		},
	}
	cmd.Flags().String("pattern", "", "regex pattern")
	cmd.Flags().String("sample", "", "sample SMS")
	return cmd
}

func runPatternTest(cmd *cobra.Command, role models.Role) error {
	_, engine, err := newEngine(role)
	if err != nil {
		return err
	}
	pattern, _ := cmd.Flags().GetString("pattern")
	sample, _ := cmd.Flags().GetString("sample")
	res, err := engine.TestPattern(commandContext(cmd), pattern, sample)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch {
	case res.ErrorMessage != "":
		fmt.Fprintf(out, "Error: %s (%d ms)\n", res.ErrorMessage, res.ExecutionTimeMs)
	case !res.Matched:
		fmt.Fprintf(out, "No match (%d ms)\n", res.ExecutionTimeMs)
	default:
		fmt.Fprintf(out, "Matched (%d ms)\n", res.ExecutionTimeMs)
		printFields(out, res.ExtractedFields)
	}
	return nil
}
