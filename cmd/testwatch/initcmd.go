package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"testwatch/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .testwatch/config.yaml",
	Run:   runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	configPath := filepath.Join(repoRoot, ".testwatch", "config.yaml")

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", configPath)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = repoRoot
	if err := cfg.Save(repoRoot); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", configPath)
}
