package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jamesainslie/tidy/pkg/tidy/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "tidy",
		Short: "Index file checksums and prune confirmed duplicates",
		Long: `Tidy builds a checksum index of a directory tree and uses it to
delete files elsewhere that are confirmed duplicates.

A file is only ever deleted when both its checksum AND its size match
an index entry; a checksum match alone is treated as a possible
collision and left untouched. Non-dry prunes ask for confirmation
twice before anything is removed.

Examples:
  tidy --scan ~/photos                         # Build an index, report duplicates
  tidy --scan ~/photos -f photos.idx           # ... and persist the index
  tidy --prune ~/backup -f photos.idx -n       # Dry run against a saved index
  tidy --prune ~/backup -f photos.idx          # Really delete confirmed duplicates
  tidy --scan ~/photos --prune ~/backup -f idx # Both phases in one invocation`,
		Args: cobra.NoArgs,
		RunE: runTidy,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/tidy/config.yaml)")
	rootCmd.Flags().String("scan", "", "directory to scan")
	rootCmd.Flags().String("prune", "", "directory to prune")
	rootCmd.Flags().StringP("file", "f", "", "checksum index path")
	rootCmd.Flags().BoolP("dry-run", "n", false, "don't delete files (preview only)")
	rootCmd.Flags().BoolP("verbose", "v", false, "per-file trace output")
	rootCmd.Flags().IntP("workers", "w", 0, "fingerprint worker count (0=default)")
	rootCmd.Flags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")

	// Bind flags to viper
	_ = viper.BindPFlag("scan", rootCmd.Flags().Lookup("scan"))
	_ = viper.BindPFlag("prune", rootCmd.Flags().Lookup("prune"))
	_ = viper.BindPFlag("file", rootCmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	_ = viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
	}

	viper.SetEnvPrefix("TIDY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("workers", config.DefaultWorkers)
	viper.SetDefault("exclude", config.DefaultExclusions)
	viper.SetDefault("log_level", config.DefaultLogLevel)

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printInfo prints a summary line to stdout.
func printInfo(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// stdinReader is shared across prompts so input buffered ahead of one
// question is still seen by the next.
var stdinReader = bufio.NewReader(os.Stdin)

// confirmStdin asks a yes/no question on the terminal. Anything other
// than an affirmative answer counts as no.
func confirmStdin(prompt string) bool {
	fmt.Printf("%s (y/n)? ", prompt)

	line, err := stdinReader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.ToLower(strings.TrimSpace(line)) == "y"
}
