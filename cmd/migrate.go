package cmd

import (
	"context"
	"fmt"
	"os"

	internalApp "github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/upgrade"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Apply pending database migrations.

Table structures are synchronized first, then every data migration not yet
recorded in schema_version runs in its own transaction. Running the command
again is safe: applied migrations are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		env, err := loadRuntime(configPath, nil)
		if err != nil {
			fmt.Printf("Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer env.closeDB()
		fmt.Printf("Loading config from: %s\n", env.configPath)

		mgr := upgrade.NewMigrationManager(env.db, env.logger)
		if dryRun {
			pending, err := mgr.Pending(context.Background(), internalApp.Version)
			if err != nil {
				fmt.Printf("Failed to list migrations: %v\n", err)
				os.Exit(1)
			}
			if len(pending) == 0 {
				fmt.Println("Database is already up to date.")
				return
			}
			for _, m := range pending {
				fmt.Printf("  %-10s %s\n", m.Version(), m.Description())
			}
			return
		}

		fmt.Println("Starting database migration...")
		n, err := mgr.Run(context.Background(), internalApp.Version)
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Database migration completed, %d migration(s) applied.\n", n)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringP("config", "c", "", "config file path")
	migrateCmd.Flags().Bool("dry-run", false, "list pending migrations without applying them")
}
