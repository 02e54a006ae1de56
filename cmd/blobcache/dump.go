package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the persisted document",
	Long: `Print the persisted document text exactly as stored.
With --pretty the JSON is indented; numbers are never reformatted.`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

var dumpPretty bool

func init() {
	dumpCmd.Flags().BoolVar(&dumpPretty, "pretty", false, "indent the document")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	text, err := client.Raw(ctx)
	if err != nil {
		return err
	}
	if text == "" {
		text = "{}"
	}

	if dumpPretty {
		fmt.Fprint(cmd.OutOrStdout(), string(pretty.Pretty([]byte(text))))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
