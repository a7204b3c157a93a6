package cmd

import (
	"fmt"

	appaccount "github.com/Zhima-Mochi/fooddelivery/internal/application/account"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/account"

	"github.com/spf13/cobra"
)

var adminFlags struct {
	username  string
	email     string
	password  string
	firstName string
	lastName  string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long: `Admins cannot register through the API. create-admin bootstraps one
directly against the configured storage.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := build(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.close()

		acc, err := a.accounts.Register(cmd.Context(), appaccount.RegisterCommand{
			Role:     account.RoleAdmin,
			Password: adminFlags.password,
			Profile: account.Profile{
				Username:  adminFlags.username,
				Email:     adminFlags.email,
				FirstName: adminFlags.firstName,
				LastName:  adminFlags.lastName,
			},
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s created with id %s\n", acc.Username, acc.ID)
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminFlags.username, "username", "", "admin username")
	f.StringVar(&adminFlags.email, "email", "", "admin email")
	f.StringVar(&adminFlags.password, "password", "", "admin password")
	f.StringVar(&adminFlags.firstName, "first-name", "", "first name")
	f.StringVar(&adminFlags.lastName, "last-name", "", "last name")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}
