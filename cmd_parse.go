package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/chrispoponi/contractflowai-web-sub001/service"
)

func parseCmd() *cobra.Command {
	var req service.ParseRequest

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse one stored contract and print the result as JSON",
		Long: `Run the extraction pipeline once against a document in object storage.

Examples:
  contractflow parse --user 7f3c --path 7f3c/offer.pdf
  contractflow parse --user 7f3c --path 7f3c/offer.pdf --contract 91ab --persist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.pipeline.Parse(ctx, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}

			if result.SummaryPath != nil {
				url, err := a.storage.GetPresignedURL(ctx, *result.SummaryPath)
				if err != nil {
					slog.Warn("could not presign summary artifact", "key", *result.SummaryPath, "error", err)
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "summary artifact: %s\n", url)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.UserID, "user", "u", "", "owner user id")
	cmd.Flags().StringVarP(&req.StoragePath, "path", "p", "", "object key of the contract document")
	cmd.Flags().StringVar(&req.ContractID, "contract", "", "contract id (names the summary artifact)")
	cmd.Flags().BoolVar(&req.Persist, "persist", false, "update the contract record with the summary")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("path")

	return cmd
}
