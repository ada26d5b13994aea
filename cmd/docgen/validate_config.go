package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Check the resolved configuration for fatal preconditions",
	RunE:  runValidateConfig,
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	result := cfg.Validate()
	if !result.Valid {
		fmt.Print(result.Error())
		return fmt.Errorf("configuration is invalid")
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Println("configuration is valid")
	return nil
}
