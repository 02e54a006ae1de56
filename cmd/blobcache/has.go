package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var hasCmd = &cobra.Command{
	Use:   "has KEY",
	Short: "Report whether a key is present",
	Args:  cobra.ExactArgs(1),
	RunE:  runHas,
}

func init() {
	rootCmd.AddCommand(hasCmd)
}

func runHas(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	found, err := client.Contains(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), found)
	return nil
}
