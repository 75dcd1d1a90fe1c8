package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var leftoversYes bool

var leftoversCmd = &cobra.Command{
	Use:   "leftovers",
	Short: "Manage the leftover inventory",
	Long:  `List, add, remove and clear stored leftover pipe pieces.`,
}

var leftoversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leftovers, largest first",
	RunE:  runLeftoversList,
}

var leftoversAddCmd = &cobra.Command{
	Use:   "add [length-mm...]",
	Short: "Add leftovers by hand",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLeftoversAdd,
}

var leftoversRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Remove one leftover",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeftoversRm,
}

var leftoversClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every leftover",
	RunE:  runLeftoversClear,
}

func init() {
	leftoversCmd.AddCommand(leftoversListCmd)
	leftoversCmd.AddCommand(leftoversAddCmd)
	leftoversCmd.AddCommand(leftoversRmCmd)
	leftoversCmd.AddCommand(leftoversClearCmd)

	leftoversClearCmd.Flags().BoolVarP(&leftoversYes, "yes", "y", false, "do not ask for confirmation")
}

func runLeftoversList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	planner, err := newPlannerService(ctx)
	if err != nil {
		return err
	}

	leftovers, err := planner.Inventory(ctx)
	if err != nil {
		return fmt.Errorf("failed to list leftovers: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(leftovers) == 0 {
		fmt.Fprintf(out, "%sNo leftovers stored.%s\n", WarningStyle, Reset)
		return nil
	}

	fmt.Fprintf(out, "%s📦 Leftover Inventory%s\n", HeaderStyle, Reset)
	fmt.Fprintf(out, "%s=====================%s\n", DimStyle, Reset)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLENGTH (mm)\tADDED")
	for _, l := range leftovers {
		fmt.Fprintf(w, "%d\t%s\t%s\n", l.ID, formatMM(l.Length), l.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()

	fmt.Fprintln(out, FormatCountLabel("Total:", len(leftovers)))
	return nil
}

func runLeftoversAdd(cmd *cobra.Command, args []string) error {
	lengths := make([]float64, 0, len(args))
	for _, arg := range args {
		length, err := validateLength(arg)
		if err != nil {
			return err
		}
		lengths = append(lengths, length)
	}

	ctx := context.Background()
	planner, err := newPlannerService(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, length := range lengths {
		id, err := planner.AddLeftover(ctx, length)
		if err != nil {
			return fmt.Errorf("failed to add leftover: %w", err)
		}
		fmt.Fprintln(out, FormatSuccess(fmt.Sprintf("✅ Added leftover %d: %s mm", id, formatMM(length))))
	}
	return nil
}

func runLeftoversRm(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid leftover id: %s", args[0])
	}

	ctx := context.Background()
	planner, err := newPlannerService(ctx)
	if err != nil {
		return err
	}

	if err := planner.RemoveLeftover(ctx, id); err != nil {
		return fmt.Errorf("failed to remove leftover: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), FormatSuccess(fmt.Sprintf("✅ Removed leftover %d", id)))
	return nil
}

func runLeftoversClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !leftoversYes {
		confirmed, err := promptYesNo(bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout(), "Delete every stored leftover? (y/N): ")
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	ctx := context.Background()
	planner, err := newPlannerService(ctx)
	if err != nil {
		return err
	}

	n, err := planner.ClearInventory(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear leftovers: %w", err)
	}
	fmt.Fprintln(out, FormatSuccess(fmt.Sprintf("✅ Removed %d leftovers", n)))
	return nil
}
