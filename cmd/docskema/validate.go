package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	docskema "github.com/reoring/docskema"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Validate data files against a type",
	Long: `Parse each data file (json, or yaml by extension; "-" reads JSON from
stdin) as the given type and report every issue with its path.

Examples:
  docskema validate -f schema.yaml --type post post.json
  cat post.json | docskema validate -f schema.yaml --type post -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var validateType string

const (
	checkMark = "✓"
	crossMark = "✗"
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateType, "type", "t", "", "type to validate against (required)")
	_ = validateCmd.MarkFlagRequired("type")
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}
	if _, ok := s.Node(validateType); !ok {
		return fmt.Errorf("unknown type %q", validateType)
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		raw, err := readData(cmd.InOrStdin(), path)
		if err == nil {
			_, err = s.Parse(cmd.Context(), validateType, raw)
		}
		if err == nil {
			fmt.Fprintf(out, "  %s %s\n", checkMark, path)
			continue
		}
		failed++
		fmt.Fprintf(out, "  %s %s\n", crossMark, path)
		iss, ok := docskema.AsIssues(err)
		if !ok {
			fmt.Fprintf(out, "      %v\n", err)
			continue
		}
		for _, is := range iss {
			fmt.Fprintf(out, "      %s: %s (%s)\n", is.Path, is.Message, is.Code)
		}
		logger.Debug().Str("file", path).Int("issues", len(iss)).Msg("validation failed")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files invalid", failed, len(args))
	}
	return nil
}

func readData(stdin io.Reader, path string) (any, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return docskema.DecodeJSON(data)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return docskema.DecodeYAML(data)
	default:
		return docskema.DecodeJSON(data)
	}
}
