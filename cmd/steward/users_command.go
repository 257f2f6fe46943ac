package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"steward/internal/auth"
	"steward/internal/store"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage shop accounts",
	}
	usersCmd.AddCommand(newUsersAddCommand(ctx))
	usersCmd.AddCommand(newUsersListCommand(ctx))
	return usersCmd
}

// newUsersAddCommand writes directly to the database so the first
// hub master can be created before the API has any users to log in with.
func newUsersAddCommand(ctx *commandContext) *cobra.Command {
	var email string
	var fullName string
	var role string
	var password string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(password) == "" {
				return errors.New("a password is required (--password)")
			}
			if !store.ValidRole(store.Role(role)) {
				return fmt.Errorf("unknown role %q (use hub_master or hub_cap)", role)
			}

			st, err := store.Open(ctx.configValue())
			if err != nil {
				return err
			}
			defer st.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			user, err := st.CreateUser(cmd.Context(), &store.User{
				Username:     args[0],
				Email:        email,
				FullName:     fullName,
				PasswordHash: hash,
				Role:         store.Role(role),
				Active:       true,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %s\n", user.Role, user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&fullName, "name", "", "Full name")
	cmd.Flags().StringVar(&role, "role", string(store.RoleHubCap), "Account role (hub_master or hub_cap)")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	return cmd
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(ctx.configValue())
			if err != nil {
				return err
			}
			defer st.Close()

			users, err := st.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, users)
			}

			stdout := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(stdout, "No accounts found")
				return nil
			}
			rows := make([][]string, 0, len(users))
			for _, user := range users {
				rows = append(rows, []string{
					user.Username,
					user.Email,
					string(user.Role),
					yesNo(user.Active),
					user.CreatedAt.Local().Format(time.RFC822),
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"Username", "Email", "Role", "Active", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit accounts as JSON")
	return cmd
}
