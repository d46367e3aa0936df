package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/internal/workflow"
)

func inboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Work through SMS no active template matched (maker)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List unparsed messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			msgs, err := c.ListUnparsed(commandContext(cmd))
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Inbox is empty.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSENDER\tRECEIVED\tTEXT")
			for _, m := range msgs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.SenderHeader, m.CreatedAt.Format("2006-01-02 15:04"), truncate(m.RawText, 70))
			}
			return tw.Flush()
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Discard an unparsed message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			if err := c.DeleteUnparsed(commandContext(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Message %s deleted.\n", args[0])
			return nil
		},
	}

	draft := &cobra.Command{
		Use:   "draft <id>",
		Short: "Generate a template from a message and save it as a DRAFT",
		Long: `Generates a pattern from the message, applies any overriding flags and saves the draft.
The message leaves the inbox once the draft is saved; with --submit the draft is also submitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, engine, err := newEngine(models.RoleMaker)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			msgs, err := c.ListUnparsed(ctx)
			if err != nil {
				return err
			}
			var msg *models.UnparsedMessage
			for _, m := range msgs {
				if m.ID == args[0] {
					msg = m
					break
				}
			}
			if msg == nil {
				return fmt.Errorf("message %s is not in the inbox", args[0])
			}

			d := workflow.NewDraftFromMessage(msg)
			if err := engine.Generate(ctx, d, msg.SenderHeader); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Generation failed: %v\n", err)
			}
			applyDraftFlags(cmd, d)
			printTemplate(cmd.OutOrStdout(), &models.Template{
				BankName: d.BankName, SmsType: d.SmsType, Pattern: d.Pattern, SampleSms: d.SampleSms, Description: d.Description,
			})

			if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
				return nil
			}
			if submit, _ := cmd.Flags().GetBool("submit"); submit {
				t, err := engine.Submit(ctx, d)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Template %s is %s.\n", t.ID, t.Status)
				return nil
			}
			t, err := engine.SaveDraft(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft %s saved.\n", t.ID)
			return nil
		},
	}
	addDraftFlags(draft)
	draft.Flags().Bool("submit", false, "submit the draft for approval after saving")
	draft.Flags().Bool("dry-run", false, "print the generated draft without saving")

	cmd.AddCommand(list, del, draft)
	return cmd
}
