package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/ui"
)

var orgCmd = &cobra.Command{
	Use:     "org",
	GroupID: "admin",
	Short:   "Manage organizations (super admin only)",
}

var orgAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an organization with its first admin user",
	Long: `Create a new organization together with its initial admin account.

Only a super admin may create organizations. The admin user is created
in the new organization with the ADMIN role.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd, nil)
		if err != nil {
			return err
		}
		defer app.close()

		app.load(cmd.Context())
		actor := app.requireActor()
		if actor.Role() != model.RoleSuperAdmin {
			return fmt.Errorf("only a super admin can create organizations")
		}

		adminName, _ := cmd.Flags().GetString("admin")
		adminUser, _ := cmd.Flags().GetString("admin-username")

		password, err := promptPassword("Admin password: ")
		if err != nil {
			return err
		}

		admin := model.Record{
			"fullName": adminName,
			"password": password,
		}
		if adminUser != "" {
			admin["username"] = adminUser
		}

		before := len(app.engine.Organizations())
		app.actions.CreateOrganization(strings.Join(args, " "), admin)
		if len(app.engine.Organizations()) == before {
			return fmt.Errorf("organization was not created")
		}

		orgs := app.engine.Organizations()
		created := orgs[len(orgs)-1]
		fmt.Printf("%s Created organization %s (%s) with admin %s\n", ui.RenderPass("✓"),
			ui.RenderAccent(created.String("name")), created.ID(), adminName)
		return nil
	},
}

func init() {
	orgAddCmd.Flags().String("admin", "Admin", "Full name of the initial admin user")
	orgAddCmd.Flags().String("admin-username", "", "Login username of the initial admin")

	orgCmd.AddCommand(orgAddCmd)
	rootCmd.AddCommand(orgCmd)
}
