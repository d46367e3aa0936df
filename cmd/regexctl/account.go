package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/models"
)

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Register and inspect your profile",
	}

	register := &cobra.Command{
		Use:   "register",
		Short: "Create your profile and role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			first, _ := cmd.Flags().GetString("first-name")
			last, _ := cmd.Flags().GetString("last-name")
			role, _ := cmd.Flags().GetString("role")
			req := dto.RegisterRequest{FirstName: first, LastName: last, Role: models.Role(strings.ToUpper(role))}
			if err := c.Register(commandContext(cmd), req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registered. Sign in again to pick up your role.")
			return nil
		},
	}
	register.Flags().String("first-name", "", "first name")
	register.Flags().String("last-name", "", "last name")
	register.Flags().String("role", "USER", "MAKER, CHECKER or USER")

	me := &cobra.Command{
		Use:   "me",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			u, err := c.Me(commandContext(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}

	cmd.AddCommand(register, me)
	return cmd
}
