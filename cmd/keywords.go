package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/brandsight/rank-tracker/internal/model"
)

// keywordsFile is the YAML shape accepted by keywords import.
type keywordsFile struct {
	BusinessID string `yaml:"business_id"`
	Keywords   []struct {
		Keyword    string   `yaml:"keyword"`
		LocationID string   `yaml:"location_id"`
		Tags       []string `yaml:"tags"`
	} `yaml:"keywords"`
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Manage tracked keywords",
}

var keywordsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-load tracked keywords from a YAML file",
	Long: `Reads a keyword seed file and creates each entry as an active
tracked keyword. Entries already present for the business are skipped.

File format:
  business_id: 550e8400-e29b-41d4-a716-446655440000
  keywords:
    - keyword: emergency plumber
      location_id: 660e8400-e29b-41d4-a716-446655440000
      tags: [local, high-intent]
    - keyword: drain cleaning`,
	RunE: runKeywordsImport,
}

func init() {
	keywordsImportCmd.Flags().String("file", "keywords.yaml", "path to the keyword seed file")
	keywordsCmd.AddCommand(keywordsImportCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywordsImport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("db"); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read keyword file %s", path)
	}

	var file keywordsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return eris.Wrapf(err, "parse keyword file %s", path)
	}

	businessID, err := uuid.Parse(file.BusinessID)
	if err != nil {
		return eris.Wrapf(err, "invalid business_id %q", file.BusinessID)
	}

	env, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	imported := 0
	for _, entry := range file.Keywords {
		if entry.Keyword == "" {
			continue
		}
		kw := model.Keyword{
			BusinessID: businessID,
			Keyword:    entry.Keyword,
			IsActive:   true,
			Tags:       entry.Tags,
		}
		if entry.LocationID != "" {
			locationID, err := uuid.Parse(entry.LocationID)
			if err != nil {
				return eris.Wrapf(err, "invalid location_id %q for keyword %q", entry.LocationID, entry.Keyword)
			}
			kw.LocationID = &locationID
		}
		if err := env.RankStore.CreateKeyword(ctx, kw); err != nil {
			return err
		}
		imported++
	}

	fmt.Printf("imported %d keywords\n", imported)
	return nil
}
