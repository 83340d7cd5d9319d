package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tair/omnichannel-catalog/internal/catalog/bundle"
	"github.com/tair/omnichannel-catalog/internal/catalog/merge"
	"github.com/tair/omnichannel-catalog/internal/catalog/usecase/command"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute <product-id>...",
	Short: "Recompute derived stock",
	Long: `Recompute the stock derived from the given products. A BUNDLED or MERGED
product is recomputed itself; for a SIMPLE product every bundle using it and
every merged product owning one of its listings is recomputed.`,
	Example: `  catalog recompute 42
  catalog recompute 7 8 9`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecompute,
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
}

func runRecompute(cmd *cobra.Command, args []string) error {
	ids := make([]uint, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseUint(a, 10, 32)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid product id %q", a)
		}
		ids = append(ids, uint(id))
	}

	store, closeDB, err := openGormStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	handler := command.NewRecomputeHandler(command.Deps{Store: store}, bundle.NewManager(), merge.NewCoordinator())
	out := cmd.OutOrStdout()
	for _, id := range ids {
		res, err := handler.Handle(cmd.Context(), command.RecomputeCommand{ProductID: id})
		if err != nil {
			return fmt.Errorf("product %d: %w", id, err)
		}
		for pid, available := range res.Recomputed {
			fmt.Fprintf(out, "product %d: available=%d\n", pid, available)
		}
	}
	return nil
}
