package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lesechos/accounts/internal/config"
	"github.com/lesechos/accounts/internal/models"
	"github.com/lesechos/accounts/internal/password"
	"github.com/lesechos/accounts/internal/service"
)

var errNeedsPersistentDB = errors.New("create-admin needs a persistent database (postgres or mongo)")

// systemActor is recorded as the actor of changes made from the command line.
var systemActor = &models.User{ID: "system", Username: "system", Role: models.RoleAdmin}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
}

var (
	adminUsername string
	adminPassword string
	adminEmail    string
	adminName     string
)

var userCreateAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an ADMIN account directly in the directory",
	Long: `Creates an ADMIN account without going through the API. Use it to
bootstrap the first administrator. The password can also be supplied in
ACCOUNTS_ADMIN_PASSWORD.`,
	RunE: runCreateAdmin,
}

func init() {
	userCreateAdminCmd.Flags().StringVar(&adminUsername, "username", "admin", "admin username")
	userCreateAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (or ACCOUNTS_ADMIN_PASSWORD)")
	userCreateAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
	userCreateAdminCmd.Flags().StringVar(&adminName, "name", "", "display name")

	userCmd.AddCommand(userCreateAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Type == config.DatabaseMemory {
		return errNeedsPersistentDB
	}

	pw := adminPassword
	if pw == "" {
		pw = os.Getenv("ACCOUNTS_ADMIN_PASSWORD")
	}

	a := &app{cfg: cfg, log: log}
	defer a.close()
	if err := a.openRepository(cmd.Context()); err != nil {
		return err
	}
	if err := a.openAudit(); err != nil {
		return err
	}

	users := service.NewUserService(a.repo, password.NewHasher(cfg.Auth.BcryptCost), a.auditLog, log)
	user, err := users.CreateByAdmin(cmd.Context(), systemActor, &models.CreateUserRequest{
		Username: adminUsername,
		Password: pw,
		Role:     string(models.RoleAdmin),
		Email:    adminEmail,
		Name:     adminName,
	})
	if err != nil {
		if se := service.AsError(err); se.Kind != service.KindInternal {
			return errors.New("create admin: " + se.Message)
		}
		return fmt.Errorf("create admin: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Username, user.ID)
	return nil
}
