package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/discochess/blobcache"
)

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the value stored under a key",
	Long: `Print the value stored under KEY, converted to the requested type.

Types: string (default), int, int64, float32, float64, bool, raw.
raw prints the stored JSON text unchanged.

Examples:
  blobcache get user.name
  blobcache get max_id --type int64
  blobcache get endpoint --type raw`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

var valueType string

func init() {
	getCmd.Flags().StringVarP(&valueType, "type", "t", "string", "value type")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	client, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	out, ok, err := readTyped(ctx, client, args[0], valueType)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key %q not found", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func readTyped(ctx context.Context, client *blobcache.Client, key, typ string) (string, bool, error) {
	switch typ {
	case "string":
		return client.String(ctx, key)
	case "int":
		n, ok, err := client.Int(ctx, key)
		return strconv.Itoa(n), ok, err
	case "int64":
		n, ok, err := client.Int64(ctx, key)
		return strconv.FormatInt(n, 10), ok, err
	case "float32":
		f, ok, err := client.Float32(ctx, key)
		return strconv.FormatFloat(float64(f), 'g', -1, 32), ok, err
	case "float64":
		f, ok, err := client.Float64(ctx, key)
		return strconv.FormatFloat(f, 'g', -1, 64), ok, err
	case "bool":
		b, ok, err := client.Bool(ctx, key)
		return strconv.FormatBool(b), ok, err
	case "raw":
		v, ok, err := client.Get(ctx, key)
		return v.Raw(), ok, err
	default:
		return "", false, fmt.Errorf("unknown type %q", typ)
	}
}
