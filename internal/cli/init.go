package cli

import (
	"bufio"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samruddhi/pipecut/internal/config"
	"github.com/samruddhi/pipecut/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize samruddhi configuration",
	Long: `Interactive wizard to write the configuration file and prepare the database.

The hosted database credentials are normally supplied through
TURSO_DATABASE_URL and TURSO_AUTH_TOKEN; the wizard can store them in the
file instead.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "🚀 Welcome to Samruddhi - Pipe Cutting Setup")
	fmt.Fprintln(out, "============================================")
	fmt.Fprintln(out)

	configPath := cfgFile
	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	if config.Exists(configPath) {
		fmt.Fprintf(out, "Configuration file already exists at: %s\n", configPath)
		confirmed, err := promptYesNo(reader, out, "Do you want to overwrite it? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	c := config.DefaultConfig()

	fmt.Fprintln(out, "\n📊 Database Configuration")
	fmt.Fprintln(out, "--------------------------")

	path, err := promptOptional(reader, out, fmt.Sprintf("Local database file [%s]: ", config.DefaultDBPath), config.DefaultDBPath)
	if err != nil {
		return err
	}
	c.Database.Path = path

	url, err := promptOptional(reader, out, "Hosted database URL (blank for local only): ", "")
	if err != nil {
		return err
	}
	if url != "" {
		token, err := promptRequired(reader, out, "Hosted database auth token: ")
		if err != nil {
			return err
		}
		c.Database.URL = url
		c.Database.AuthToken = token
	}

	if err := c.Validate(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n🔌 Testing database connection...")
	sel := db.FromConfig(c.Database)
	defer sel.Close()

	ctx := context.Background()
	database, err := sel.Get(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ Failed to connect to database: %v\n", err)
		fmt.Fprintln(out, "\nPlease check your database configuration and try again.")
		return err
	}
	if err := db.RunMigrations(ctx, database); err != nil {
		fmt.Fprintf(out, "❌ Failed to migrate database: %v\n", err)
		return err
	}
	fmt.Fprintln(out, FormatSuccess("✅ Database connection successful!"))

	fmt.Fprintln(out, "\n💾 Saving configuration...")
	if err := c.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintf(out, "✅ Configuration saved to: %s\n", configPath)

	fmt.Fprintln(out, "\n📋 Configuration Summary")
	fmt.Fprintln(out, "========================")
	fmt.Fprintf(out, "Backend: %s\n", sel.Target())
	if c.Database.AuthToken != "" {
		fmt.Fprintf(out, "Auth token: %s\n", maskSensitiveData(c.Database.AuthToken, "*"))
	}
	fmt.Fprintf(out, "Server: http://%s:%d\n", c.Server.Host, c.Server.Port)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "🎉 Setup complete!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Plan cuts: samruddhi plan single --raw 6000 --cut 1000 --qty 5")
	fmt.Fprintln(out, "  2. Review leftovers: samruddhi leftovers list")
	fmt.Fprintln(out, "  3. Start the web page: samruddhi serve")

	return nil
}
