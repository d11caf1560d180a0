package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/matiasrios/facegate/internal/config"
	"github.com/matiasrios/facegate/internal/extractor"
)

var importCmd = &cobra.Command{
	Use:   "import <employees.json>",
	Short: "Bulk-register employees from a JSON file",
	Long: `Register many employees at once. The file is a JSON array of objects:

  [{"id": "E1", "area": "production", "role": "operator", "shift": "morning",
    "embedding": [...], "image": "faces/e1.jpg"}]

Each entry carries either a precomputed 128-dimension embedding or an image
path relative to the file; images are sent to the embedding server.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

type importEntry struct {
	ID        string    `json:"id"`
	Area      string    `json:"area"`
	Role      string    `json:"role"`
	Shift     string    `json:"shift"`
	Embedding []float32 `json:"embedding"`
	Image     string    `json:"image"`
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	var entries []importEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("Nothing to import")
		return nil
	}

	ctx := context.Background()
	cfg := config.Load()
	svc, backend, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	ex := extractor.New(cfg.Embedding.URL)
	baseDir := filepath.Dir(args[0])

	bar := progressbar.NewOptions(len(entries),
		progressbar.OptionSetDescription("Registering employees"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("employees"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var registered, failed int
	var failures []string
	for _, entry := range entries {
		emb := entry.Embedding
		if len(emb) == 0 && entry.Image != "" {
			image, err := os.ReadFile(filepath.Join(baseDir, entry.Image))
			if err != nil {
				failed++
				failures = append(failures, fmt.Sprintf("%s: %v", entry.ID, err))
				bar.Add(1)
				continue
			}
			emb, err = ex.ExtractFace(ctx, image)
			if err != nil {
				failed++
				failures = append(failures, fmt.Sprintf("%s: %v", entry.ID, err))
				bar.Add(1)
				continue
			}
		}

		result := svc.RegisterEmployee(ctx, entry.ID, entry.Area, entry.Role, entry.Shift, emb)
		if result.OK {
			registered++
		} else {
			failed++
			failures = append(failures, fmt.Sprintf("%s: %s", entry.ID, result.Message))
		}
		bar.Add(1)
	}

	fmt.Printf("\n\nRegistered: %d, failed: %d\n", registered, failed)
	for _, f := range failures {
		fmt.Printf("  %s\n", f)
	}
	if failed > 0 {
		return fmt.Errorf("%d entries failed to import", failed)
	}
	return nil
}
