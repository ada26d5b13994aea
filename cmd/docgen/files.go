package main

import (
	"fmt"

	"github.com/julianopadua/documentation-helper/internal/docgen"
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the source files the current configuration would scan",
	RunE:  runFiles,
}

func runFiles(cmd *cobra.Command, args []string) error {
	scanCfg := docgen.ScanConfig{
		IncludeExtensions: cfg.Scan.IncludeExtensions,
		ExcludeDirs:       cfg.Scan.ExcludeDirs,
		IgnorePatterns:    cfg.Scan.IgnorePatterns,
	}

	found, err := docgen.ScanSourceFiles(cfg.Paths.ScanRoot, scanCfg)
	if err != nil {
		return err
	}

	for _, f := range found {
		fmt.Println(f.RelPosix())
	}
	fmt.Printf("%d file(s)\n", len(found))
	return nil
}
