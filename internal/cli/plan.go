package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/samruddhi/pipecut/internal/cutting"
	"github.com/samruddhi/pipecut/internal/models"
	"github.com/samruddhi/pipecut/internal/services"
)

var (
	planRaw    float64
	planCut    float64
	planQty    int
	planCuts   []string
	planDryRun bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan pipe cuts",
	Long: `Plan how to cut pipes, using stored leftovers first.

Unless --dry-run is given, consumed leftovers are removed from the
inventory and new scrap of at least 100 mm is stored.`,
}

var planSingleCmd = &cobra.Command{
	Use:   "single",
	Short: "Cut one piece length from raw pipes of a given length",
	RunE:  runPlanSingle,
}

var planMultiCmd = &cobra.Command{
	Use:   "multi",
	Short: "Cut several piece lengths from standard 3600 mm pipes",
	Example: `  samruddhi plan multi --cut 868x3 --cut 1200x2
  samruddhi plan multi --cut 500,250x4 --dry-run`,
	RunE: runPlanMulti,
}

func init() {
	planCmd.AddCommand(planSingleCmd)
	planCmd.AddCommand(planMultiCmd)
	planCmd.PersistentFlags().BoolVar(&planDryRun, "dry-run", false, "plan without changing the inventory")

	planSingleCmd.Flags().Float64Var(&planRaw, "raw", 0, "raw pipe length in mm")
	planSingleCmd.Flags().Float64Var(&planCut, "cut", 0, "piece length in mm")
	planSingleCmd.Flags().IntVar(&planQty, "qty", 0, "number of pieces")
	planSingleCmd.MarkFlagRequired("raw")
	planSingleCmd.MarkFlagRequired("cut")
	planSingleCmd.MarkFlagRequired("qty")

	planMultiCmd.Flags().StringSliceVar(&planCuts, "cut", nil, "piece as LENGTHxQTY (QTY defaults to 1), repeatable")
	planMultiCmd.MarkFlagRequired("cut")
}

func runPlanSingle(cmd *cobra.Command, args []string) error {
	if !cutting.ValidLength(planRaw) || !cutting.ValidLength(planCut) {
		return fmt.Errorf("--raw and --cut must be lengths in (0, %.0f] mm", cutting.MaxLengthMM)
	}
	if planQty <= 0 || planQty > cutting.MaxPieces {
		return fmt.Errorf("--qty must be between 1 and %d", cutting.MaxPieces)
	}

	ctx := context.Background()
	planner, err := newPlannerService(ctx)
	if err != nil {
		return err
	}

	plan, err := planner.Single(ctx, services.SingleRequest{
		RawLength: planRaw,
		CutLength: planCut,
		Quantity:  planQty,
		DryRun:    planDryRun,
	})
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	printSinglePlan(cmd.OutOrStdout(), plan)
	return nil
}

func runPlanMulti(cmd *cobra.Command, args []string) error {
	reqs := make([]models.CutRequirement, 0, len(planCuts))
	for _, s := range planCuts {
		req, err := parseCutArg(s)
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}

	ctx := context.Background()
	planner, err := newPlannerService(ctx)
	if err != nil {
		return err
	}

	plan, err := planner.Multi(ctx, services.MultiRequest{Cuts: reqs, DryRun: planDryRun})
	if err != nil {
		return fmt.Errorf("failed to plan: %w", err)
	}

	printMultiPlan(cmd.OutOrStdout(), plan)
	return nil
}

func printSinglePlan(out io.Writer, plan *cutting.SinglePlan) {
	fmt.Fprintf(out, "%s✂️  Cutting Plan%s\n", HeaderStyle, Reset)
	fmt.Fprintf(out, "%s===============%s\n", DimStyle, Reset)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tPIECES\tCUT (mm)\tREMAINING (mm)")
	for _, seg := range plan.Segments {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", seg.Source, seg.Pieces, formatMM(seg.CutLength), formatMM(seg.Remaining))
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, FormatLabelValue("Pieces produced:", fmt.Sprintf("%d of %d", plan.PiecesProduced, plan.Requested)))
	if plan.Shortfall > 0 {
		fmt.Fprintln(out, FormatWarning(fmt.Sprintf("⚠️  Short by %d pieces", plan.Shortfall)))
	}
	fmt.Fprintln(out, FormatLabelValue("Material used:", formatMM(plan.MaterialUsed)+" mm"))
	fmt.Fprintln(out, FormatLabelValue("Incl. kerf:", fmt.Sprintf("%s mm (%s mm kerf)",
		formatMM(plan.MaterialUsedInclKerf), formatMM(plan.KerfTotal))))
	if len(plan.ScrapSaved) > 0 {
		saved := make([]string, len(plan.ScrapSaved))
		for i, s := range plan.ScrapSaved {
			saved[i] = formatMM(s)
		}
		fmt.Fprintln(out, FormatLabelValue("Scrap saved:", strings.Join(saved, ", ")+" mm"))
	}
	if plan.SuggestedRaw != nil {
		fmt.Fprintln(out, FormatInfo(fmt.Sprintf("💡 Next raw length suggestion: %s mm", formatMM(*plan.SuggestedRaw))))
	}
}

func printMultiPlan(out io.Writer, plan *cutting.MultiPlan) {
	fmt.Fprintf(out, "%s✂️  Cutting Plan (%s mm raw pipes)%s\n", HeaderStyle, formatMM(plan.RawLength), Reset)
	fmt.Fprintf(out, "%s=====================================%s\n", DimStyle, Reset)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPIPE\tCUTS\tKERF\tUSED\tSCRAP\tCLASS")
	for _, p := range plan.Pipes {
		cuts := make([]string, len(p.Cuts))
		for i, c := range p.Cuts {
			cuts[i] = formatMM(c)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", p.Number, p.Label, strings.Join(cuts, ", "),
			formatMM(p.KerfMM), formatMM(p.Used), formatMM(p.Scrap), p.ScrapClass)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, FormatCountLabel("Pipes:", plan.TotalPipes))
	fmt.Fprintln(out, FormatLabelValue("Used:", formatMM(plan.TotalUsed)+" mm"))
	fmt.Fprintln(out, FormatLabelValue("Scrap:", formatMM(plan.TotalScrap)+" mm"))
	fmt.Fprintln(out, FormatLabelValue("Kerf:", formatMM(plan.TotalKerf)+" mm"))
	if plan.LastPipeOverLimit {
		fmt.Fprintln(out, FormatWarning(fmt.Sprintf("⚠️  Last pipe scrap exceeds %s mm", formatMM(cutting.LastPipeScrapMaxMM))))
	}
}
