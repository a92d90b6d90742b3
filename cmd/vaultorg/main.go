package main

import (
	"fmt"
	"os"
	"path/filepath"

	"vaultorg/internal/app"
	"vaultorg/internal/config"
	"vaultorg/internal/organize"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// a.Close(). operation identifies the CLI command being run.
func newApp(operation string, preview bool, workers int) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if preview {
		cfg.Preview = true
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "vaultorg",
	Short: "Organize files into a date and category structured vault",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init VAULT_ROOT",
	Short: "Initialize configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		vaultRoot, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving vault root: %w", err)
		}

		cfg := config.NewConfig(vaultRoot, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Vault Root: %s\n", vaultRoot)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Vault Root:      %s\n", cfg.VaultRoot)
		fmt.Printf("Base Dir:        %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		fmt.Printf("Index:           %s\n", cfg.Index.Type)
		fmt.Printf("Workers:         %d\n", cfg.Workers)
		fmt.Printf("Max Path Length: %d\n", cfg.MaxPathLength)
		fmt.Printf("Rules:           %d\n", len(cfg.Rules))
		return nil
	},
}

// organize command
var organizeCmd = &cobra.Command{
	Use:   "organize [PATH]",
	Short: "Decide and create vault placements for files",
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		preview, _ := cmd.Flags().GetBool("preview")
		workers, _ := cmd.Flags().GetInt("workers")

		a, err := newApp("Organize", preview, workers)
		if err != nil {
			return err
		}
		defer a.Close()

		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		decisions, err := a.Organize(cmd.Context(), target, recursive)
		if err != nil {
			return fmt.Errorf("organizing: %w", err)
		}

		printDecisions(decisions, a.Preview())
		return nil
	},
}

// preview command: organize with preview forced on.
var previewCmd = &cobra.Command{
	Use:   "preview [PATH]",
	Short: "Show placement decisions without touching the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		a, err := newApp("Preview", true, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		decisions, err := a.Organize(cmd.Context(), target, recursive)
		if err != nil {
			return fmt.Errorf("previewing: %w", err)
		}

		printDecisions(decisions, true)
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Stats", false, 0)
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Unique files:       %d\n", stats.UniqueFiles)
		fmt.Printf("Unique bytes:       %d\n", stats.UniqueBytes)
		fmt.Printf("Duplicate files:    %d\n", stats.DuplicateFiles)
		fmt.Printf("Bytes deduplicated: %d\n", stats.DeduplicatedBytes)
		fmt.Printf("Decisions recorded: %d\n", stats.Decisions)
		return nil
	},
}

func printDecisions(decisions []*organize.OrganizationDecision, preview bool) {
	if len(decisions) == 0 {
		fmt.Println("No files found.")
		return
	}

	for _, d := range decisions {
		var indicator string
		switch {
		case d.Error != "":
			indicator = "E"
		case d.Duplicate:
			indicator = "D"
		case preview:
			indicator = "P"
		default:
			indicator = "O"
		}

		detail := d.Path.Absolute
		if d.Duplicate {
			detail = fmt.Sprintf("duplicate of %s", d.DuplicateOf)
		}
		if d.Error != "" {
			detail = d.Error
		}

		flag := ""
		if d.Date.NeedsReview {
			flag = "  [review]"
		}
		fmt.Printf("%s  %-40s  %s%s\n", indicator, d.File.SourcePath, detail, flag)
	}

	s := organize.Summarize(decisions)
	if preview {
		fmt.Printf("\n%d file(s) previewed, %d duplicate(s), %d error(s)\n", s.Pending, s.Duplicates, s.Failed)
	} else {
		fmt.Printf("\n%d file(s) organized, %d duplicate(s), %d error(s)\n", s.Organized, s.Duplicates, s.Failed)
	}
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	organizeCmd.Flags().Bool("preview", false, "Compute decisions without mutating anything")
	organizeCmd.Flags().IntP("workers", "w", 0, "Worker pool size (default from config)")
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	rootCmd.AddCommand(statsCmd)
}
