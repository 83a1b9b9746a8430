package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wopr-network/wopr-plugin-sandbox/internal/dockerdriver"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List registry entries and their live container state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type statusRow struct {
	ContainerName string `json:"containerName"`
	SessionKey    string `json:"sessionKey"`
	Image         string `json:"image"`
	CreatedAtMs   int64  `json:"createdAtMs"`
	LastUsedAtMs  int64  `json:"lastUsedAtMs"`
	ConfigHash    string `json:"configHash"`
	Exists        bool   `json:"exists"`
	Running       bool   `json:"running"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	records, err := plugin.ListRegistry()
	if err != nil {
		return fmt.Errorf("listing registry: %w", err)
	}

	ctx := context.Background()
	rows := make([]statusRow, 0, len(records))
	for _, r := range records {
		state, err := dockerdriver.DockerContainerState(ctx, r.ContainerName)
		if err != nil {
			return fmt.Errorf("inspecting %q: %w", r.ContainerName, err)
		}
		rows = append(rows, statusRow{
			ContainerName: r.ContainerName,
			SessionKey:    r.SessionKey,
			Image:         r.Image,
			CreatedAtMs:   r.CreatedAtMs,
			LastUsedAtMs:  r.LastUsedAtMs,
			ConfigHash:    r.ConfigHash,
			Exists:        state.Exists,
			Running:       state.Running,
		})
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "CONTAINER\tSESSION\tIMAGE\tRUNNING\tEXISTS\tCONFIG HASH")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%v\t%s\n", row.ContainerName, row.SessionKey, row.Image, row.Running, row.Exists, row.ConfigHash)
	}
	return w.Flush()
}
