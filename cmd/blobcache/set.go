package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/blobcache/internal/document"
)

var setCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Store a value under a key",
	Long: `Store VALUE under KEY. VALUE is stored as a JSON string unless
--json is given, in which case it must be valid JSON and is stored as is.

Examples:
  blobcache set user.name ada
  blobcache set retries 3 --json
  blobcache set endpoint '{"host":"example.com","port":443}' --json`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

var setJSON bool

func init() {
	setCmd.Flags().BoolVar(&setJSON, "json", false, "parse VALUE as JSON")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	var value any = args[1]
	if setJSON {
		v, err := document.Parse(args[1])
		if err != nil {
			return fmt.Errorf("parsing value: %w", err)
		}
		value = v
	}

	ctx := context.Background()
	client, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	return client.Set(ctx, args[0], value)
}
