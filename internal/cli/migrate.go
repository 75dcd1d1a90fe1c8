package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samruddhi/pipecut/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
	Long:  `Apply the embedded schema migrations to the selected database.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Run all pending migrations",
	Long:  `Apply all pending database migrations.`,
	RunE:  runMigrateUp,
}

var migrateVersionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"status"},
	Short:   "Show current migration version",
	Long:    `Show the current database migration version.`,
	RunE:    runMigrateVersion,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "🔄 Running database migrations on %s...\n", selector.Target())

	if _, err := openDatabase(context.Background()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(out, FormatSuccess("✅ Migrations completed successfully!"))
	return nil
}

func runMigrateVersion(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	database, err := selector.Get(ctx)
	if err != nil {
		return err
	}

	version, dirty, err := db.MigrationVersion(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s📊 Migration Status%s\n", HeaderStyle, Reset)
	fmt.Fprintf(out, "%s===================%s\n", DimStyle, Reset)
	fmt.Fprintln(out, FormatLabelValue("Version:", fmt.Sprintf("%d", version)))
	if dirty {
		fmt.Fprintln(out, FormatWarning("⚠️  Database is dirty, the last migration did not finish"))
	}
	return nil
}
