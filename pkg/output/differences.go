package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/dirmirror/pkg/models"
)

var kindOrder = []models.DifferenceKind{
	models.DiffHostOnly,
	models.DiffDestOnly,
	models.DiffFunny,
	models.DiffContent,
}

var kindLabels = map[models.DifferenceKind]string{
	models.DiffHostOnly: "Only on Host",
	models.DiffDestOnly: "Only on Destination",
	models.DiffFunny:    "Funny Entries",
	models.DiffContent:  "Content Differences",
}

// WriteDifferencesReport writes the differences report to a file.
// Format can be "human" or "json". No file is created when diffs is empty.
func WriteDifferencesReport(diffs []models.Difference, hostPath, destPath, filepath, format string) error {
	if len(diffs) == 0 {
		return nil
	}

	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create differences file: %w", err)
	}
	defer file.Close()

	if err := WriteDifferences(file, diffs, hostPath, destPath, format); err != nil {
		return err
	}
	return file.Close()
}

// WriteDifferences renders diffs to w
func WriteDifferences(w io.Writer, diffs []models.Difference, hostPath, destPath, format string) error {
	switch format {
	case "json":
		return writeDifferencesJSON(w, diffs, hostPath, destPath)
	default:
		return writeDifferencesHuman(w, diffs, hostPath, destPath)
	}
}

// writeDifferencesHuman writes differences grouped by kind
func writeDifferencesHuman(w io.Writer, diffs []models.Difference, hostPath, destPath string) error {
	fmt.Fprintf(w, "Differences Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Host: %s\n", hostPath)
	fmt.Fprintf(w, "Destination: %s\n\n", destPath)

	fmt.Fprintf(w, "Total Differences: %d\n\n", len(diffs))

	byKind := make(map[models.DifferenceKind][]models.Difference)
	for _, diff := range diffs {
		byKind[diff.Kind] = append(byKind[diff.Kind], diff)
	}

	for _, kind := range kindOrder {
		group := byKind[kind]
		if len(group) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d)", kindLabels[kind], len(group))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, diff := range group {
			fmt.Fprintf(w, "  %s\n", diff.Path)
			if diff.Reason != "" {
				fmt.Fprintf(w, "    Reason: %s\n", diff.Reason)
			}
		}

		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeDifferencesJSON writes differences in JSON format
func writeDifferencesJSON(w io.Writer, diffs []models.Difference, hostPath, destPath string) error {
	output := struct {
		Generated   string              `json:"generated"`
		HostPath    string              `json:"host_path"`
		DestPath    string              `json:"dest_path"`
		TotalCount  int                 `json:"total_count"`
		Differences []models.Difference `json:"differences"`
	}{
		Generated:   time.Now().Format(time.RFC3339),
		HostPath:    hostPath,
		DestPath:    destPath,
		TotalCount:  len(diffs),
		Differences: diffs,
	}
	if output.Differences == nil {
		output.Differences = []models.Difference{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
