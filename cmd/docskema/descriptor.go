package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var descriptorCmd = &cobra.Command{
	Use:   "descriptor",
	Short: "Emit schema descriptors",
	Long: `Emit the descriptor of every type in the schema file, in declaration
order, or of a single type with --type.

Examples:
  docskema descriptor -f schema.yaml
  docskema descriptor -f schema.yaml --type post -o yaml`,
	RunE: runDescriptor,
}

var descriptorType string

func init() {
	rootCmd.AddCommand(descriptorCmd)

	descriptorCmd.Flags().StringVarP(&descriptorType, "type", "t", "", "emit only this type")
}

func runDescriptor(cmd *cobra.Command, _ []string) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}
	if descriptorType == "" {
		return write(cmd.OutOrStdout(), s.Descriptors())
	}
	n, ok := s.Node(descriptorType)
	if !ok {
		return fmt.Errorf("unknown type %q", descriptorType)
	}
	return write(cmd.OutOrStdout(), n.Descriptor())
}
