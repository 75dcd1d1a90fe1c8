package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samruddhi/pipecut/internal/cutting"
	"github.com/samruddhi/pipecut/internal/services"
	"github.com/samruddhi/pipecut/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View leftover inventory statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}

	st, err := services.NewStatsService(store.NewLeftoverStore(database)).GetInventoryStats(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if st.Count == 0 {
		fmt.Fprintf(out, "%sNo leftovers stored.%s\n", WarningStyle, Reset)
		return nil
	}

	fmt.Fprintf(out, "%s📊 Inventory Statistics%s\n", HeaderStyle, Reset)
	fmt.Fprintf(out, "%s=======================%s\n", DimStyle, Reset)
	fmt.Fprintln(out, FormatCountLabel("Leftovers:", st.Count))
	fmt.Fprintln(out, FormatLabelValue("Total length:", formatMM(st.TotalLength)+" mm"))
	fmt.Fprintln(out, FormatLabelValue("Longest:", formatMM(st.Longest)+" mm"))
	fmt.Fprintln(out, FormatLabelValue("Shortest:", formatMM(st.Shortest)+" mm"))
	fmt.Fprintln(out, FormatCountLabel(fmt.Sprintf("Usable (>= %s mm):", formatMM(cutting.ScrapUsableMinMM)), st.Usable))
	fmt.Fprintln(out, FormatCountLabel("Not usable:", st.NotUsable))
	return nil
}
