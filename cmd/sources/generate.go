// Package sources provides the sources command implementation.
package sources

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/constants"
	internalsources "github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

var (
	generateOutputFile string
	generateID         string
	generateName       string
	generateKind       string
	generateURL        string
	generateChannel    string
	generateTokenEnv   string
)

// generatedSource is the YAML shape of one scaffolded sources-file entry.
type generatedSource struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	URL      string `yaml:"url,omitempty"`
	Channel  string `yaml:"channel,omitempty"`
	TokenEnv string `yaml:"token_env,omitempty"`
	Enabled  bool   `yaml:"enabled"`
}

// generatedFile wraps entries under the sources key the loader expects.
type generatedFile struct {
	Sources []generatedSource `yaml:"sources"`
}

// NewGenerateCommand creates a new generate subcommand for sources.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a sources-file entry for a new source",
		Long: `Generates a YAML sources-file entry for a new monitored source.

Example:
  # Scaffold an archive source
  signal-crawler sources generate --id pastebin-archive --kind archive \
    --url https://pastebin.com

  # Scaffold a channel source and write it to a file for review
  signal-crawler sources generate --id crypto-channel --kind channel \
    --channel cryptoleaks --token-env TELEGRAM_BOT_TOKEN -o new_source.yaml`,
		RunE: runGenerate,
	}

	cmd.Flags().StringVar(&generateID, "id", "", "Source identifier (required)")
	cmd.Flags().StringVar(&generateName, "name", "", "Human-readable name (default: the id)")
	cmd.Flags().StringVar(&generateKind, "kind", "", "Source kind: archive or channel (required)")
	cmd.Flags().StringVar(&generateURL, "url", "", "Archive base URL (archive sources)")
	cmd.Flags().StringVar(&generateChannel, "channel", "", "Channel username or chat ID (channel sources)")
	cmd.Flags().StringVar(&generateTokenEnv, "token-env", "",
		"Environment variable holding the bot token (channel sources)")
	cmd.Flags().StringVarP(&generateOutputFile, "output", "o", "", "Output file path (default: stdout)")

	if err := cmd.MarkFlagRequired("id"); err != nil {
		return nil
	}
	if err := cmd.MarkFlagRequired("kind"); err != nil {
		return nil
	}

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	entry, err := buildEntry()
	if err != nil {
		return err
	}

	// Prepare output directory if needed
	if prepErr := prepareOutputDirectory(); prepErr != nil {
		return prepErr
	}

	content, err := yaml.Marshal(generatedFile{Sources: []generatedSource{entry}})
	if err != nil {
		return fmt.Errorf("failed to generate YAML: %w", err)
	}

	// Write output
	if writeErr := writeOutput(string(content)); writeErr != nil {
		return writeErr
	}

	// Print success message
	printSuccessMessage()

	return nil
}

// buildEntry assembles and checks the scaffolded entry from the flags.
func buildEntry() (generatedSource, error) {
	entry := generatedSource{
		ID:       generateID,
		Name:     generateName,
		Kind:     generateKind,
		URL:      generateURL,
		Channel:  generateChannel,
		TokenEnv: generateTokenEnv,
		Enabled:  true,
	}
	if entry.Name == "" {
		entry.Name = entry.ID
	}

	if !constants.ValidSourceKinds[entry.Kind] {
		return generatedSource{}, fmt.Errorf("%w: %q", internalsources.ErrInvalidSourceKind, entry.Kind)
	}

	switch entry.Kind {
	case constants.SourceKindArchive:
		if entry.URL == "" {
			return generatedSource{}, fmt.Errorf("%w: url (use --url)", internalsources.ErrMissingRequiredField)
		}
	case constants.SourceKindChannel:
		if entry.Channel == "" {
			return generatedSource{}, fmt.Errorf("%w: channel (use --channel)", internalsources.ErrMissingRequiredField)
		}
		if entry.TokenEnv == "" {
			return generatedSource{}, fmt.Errorf("%w: token_env (use --token-env)", internalsources.ErrMissingRequiredField)
		}
	}

	return entry, nil
}

// prepareOutputDirectory ensures the output directory exists if needed.
func prepareOutputDirectory() error {
	if generateOutputFile == "" {
		return nil
	}

	outputDir := filepath.Dir(generateOutputFile)
	if outputDir == "." || outputDir == "" {
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	fmt.Fprintf(os.Stderr, "📁 Created directory: %s\n", outputDir)
	return nil
}

// writeOutput writes YAML content to the appropriate output.
func writeOutput(yamlContent string) error {
	var writer io.Writer = os.Stdout

	if generateOutputFile == "" {
		_, err := fmt.Fprint(writer, yamlContent)
		return err
	}

	file, fileErr := os.Create(generateOutputFile)
	if fileErr != nil {
		return fmt.Errorf("failed to create output file: %w", fileErr)
	}
	defer file.Close()
	writer = file

	_, writeErr := fmt.Fprint(writer, yamlContent)
	if writeErr != nil {
		return fmt.Errorf("failed to write output: %w", writeErr)
	}

	return nil
}

// printSuccessMessage prints success message after writing output.
func printSuccessMessage() {
	if generateOutputFile == "" {
		fmt.Fprintf(os.Stderr, "\n⚠️  Review the entry, then merge it into your sources file.\n")
		return
	}

	fmt.Fprintf(os.Stderr, "\n✅ Source entry written to %s\n\n", generateOutputFile)
	fmt.Fprintf(os.Stderr, "⚠️  Review the entry, then merge it into your sources file.\n")
	fmt.Fprintf(os.Stderr, "   Run 'sources validate' after merging to confirm it loads.\n")
}
