package main

import (
	"encoding/json"
	"log/slog"

	"github.com/SscSPs/approval_engine/internal/core/services"
	"github.com/SscSPs/approval_engine/internal/core/workflow"
	"github.com/spf13/cobra"
)

func newReconcileCommand(cc *commandContext) *cobra.Command {
	var requestID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Roll forward requests whose status trails their approval ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			repos, closeStore, err := openStore(ctx, cc.cfg, cc.logger, false)
			if err != nil {
				return err
			}
			defer closeStore()

			registry, err := workflow.LoadDefinitions(cc.cfg.WorkflowDefinitionsPath)
			if err != nil {
				return err
			}
			reconciler := services.NewReconcileService(registry, repos, services.WithStoreTimeout(cc.cfg.StoreTimeout))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if requestID != "" {
				outcome, err := reconciler.Reconcile(ctx, requestID)
				if err != nil {
					return err
				}
				return enc.Encode(outcome)
			}

			report, err := reconciler.ReconcileAll(ctx)
			if err != nil {
				return err
			}
			cc.logger.Info("Reconciliation finished",
				slog.Int("checked", report.Checked),
				slog.Int("rolled_forward", report.RolledForward),
				slog.Int("unrepairable", len(report.Unrepairable)))
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVar(&requestID, "request", "", "Reconcile a single request instead of every pending one")
	return cmd
}
