package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samruddhi/pipecut/internal/db"
	"github.com/samruddhi/pipecut/internal/health"
)

var backendCheck bool

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Show which database backend is selected",
	Long: `Print the backend resolved from configuration and environment.
With --check the backend is also connected and checked once.`,
	RunE: runBackend,
}

func init() {
	backendCmd.Flags().BoolVar(&backendCheck, "check", false, "connect and check the backend")
}

func runBackend(cmd *cobra.Command, args []string) error {
	target := selector.Target()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s🗄️  Database Backend%s\n", HeaderStyle, Reset)
	fmt.Fprintf(out, "%s===================%s\n", DimStyle, Reset)
	fmt.Fprintln(out, FormatLabelValue("Kind:", string(target.Kind)))
	if target.Kind == db.KindRemote {
		fmt.Fprintln(out, FormatLabelValue("URL:", target.URL))
		fmt.Fprintln(out, FormatLabelValue("Auth token:", maskSensitiveData(target.AuthToken, "*")))
	} else {
		fmt.Fprintln(out, FormatLabelValue("Path:", target.Path))
	}

	if !backendCheck {
		return nil
	}

	ctx := context.Background()
	database, err := selector.Get(ctx)
	if err != nil {
		fmt.Fprintln(out, FormatError("❌ "+err.Error()))
		return err
	}

	st := health.NewMonitor(database).Check(ctx)
	if !st.Healthy {
		fmt.Fprintln(out, FormatError("❌ Check failed: "+st.Error))
		return fmt.Errorf("backend check failed: %s", st.Error)
	}
	fmt.Fprintln(out, FormatSuccess(fmt.Sprintf("✅ Reachable (%s)", formatDuration(st.Latency))))
	return nil
}
