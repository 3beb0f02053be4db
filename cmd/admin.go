package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	internalApp "github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/upgrade"

	"github.com/spf13/cobra"
)

// withApp 初始化 App Container 执行 fn，结束后关闭
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *internalApp.App) error) {
	configPath, _ := cmd.Flags().GetString("config")
	if len(configPath) <= 0 {
		configPath = "config/config.yaml"
	}

	env, err := loadRuntime(configPath, nil)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	if err := upgrade.Execute(ctx, env.db, env.logger, internalApp.Version); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}

	a, err := internalApp.NewApp(env.cfg, env.logger, env.db)
	if err != nil {
		fmt.Printf("Failed to create app container: %v\n", err)
		os.Exit(1)
	}
	runErr := fn(ctx, a)

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = a.Shutdown(shutdownCtx)

	if runErr != nil {
		fmt.Printf("Error: %v\n", runErr)
		os.Exit(1)
	}
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

func init() {
	setReq := &dto.AdminSetRequest{}
	setCmd := &cobra.Command{
		Use:   "set --email <email> [--role editor] [--name <name>] [--password <password>]",
		Short: "Create or update an admin account",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(cmd, func(ctx context.Context, a *internalApp.App) error {
				admin, err := a.AdminService.Set(ctx, setReq)
				if err != nil {
					return err
				}
				fmt.Printf("Admin %s saved with role %s\n", admin.Email, admin.Role)
				return nil
			})
		},
	}
	setCmd.Flags().StringVar(&setReq.Email, "email", "", "admin email")
	setCmd.Flags().StringVar(&setReq.Name, "name", "", "display name")
	setCmd.Flags().StringVar(&setReq.Role, "role", "", "role: viewer, editor, admin or superadmin")
	setCmd.Flags().StringVar(&setReq.Password, "password", "", "password, required for new accounts")
	_ = setCmd.MarkFlagRequired("email")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List admin accounts",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(cmd, func(ctx context.Context, a *internalApp.App) error {
				admins, err := a.AdminService.List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tLAST LOGIN")
				for _, admin := range admins {
					last := "-"
					if admin.LastLoginAt != nil {
						last = admin.LastLoginAt.String()
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", admin.Email, admin.Name, admin.Role, last)
				}
				return w.Flush()
			})
		},
	}

	var deleteEmail string
	deleteCmd := &cobra.Command{
		Use:   "delete --email <email>",
		Short: "Delete an admin account",
		Run: func(cmd *cobra.Command, args []string) {
			withApp(cmd, func(ctx context.Context, a *internalApp.App) error {
				found, err := a.AdminService.Delete(ctx, deleteEmail)
				if err != nil {
					return err
				}
				if !found {
					fmt.Printf("Admin %s not found\n", deleteEmail)
					return nil
				}
				fmt.Printf("Admin %s deleted\n", deleteEmail)
				return nil
			})
		},
	}
	deleteCmd.Flags().StringVar(&deleteEmail, "email", "", "admin email")
	_ = deleteCmd.MarkFlagRequired("email")

	adminCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	adminCmd.AddCommand(setCmd, listCmd, deleteCmd)
	rootCmd.AddCommand(adminCmd)
}
