package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rohianon/equishare-dashboard/cmd/dashboard/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
	Long:  "View and modify CLI configuration.",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display all current configuration values.",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Available keys:
  backend.base_url     - Portfolio backend URL (default: http://localhost:8090)
  backend.timeout      - Backend request timeout, e.g. 10s (default: none)
  origin               - Identity checked for write access (default: backend URL)
  format               - Default output format: table, json (default: table)
  terminal.breakpoint  - Terminal width below which one column is used (default: 100)
  terminal.refresh     - Reload interval of show --watch (default: 30s)
  log.level            - Log level on stderr (default: warn)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Long:  "Display the path to the configuration file.",
	RunE:  runConfigPath,
}

// settableKeys are the keys config set accepts, in display order
var settableKeys = []string{
	"backend.base_url",
	"backend.timeout",
	"origin",
	"format",
	"terminal.breakpoint",
	"terminal.refresh",
	"log.level",
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	settings := make(map[string]string, len(settableKeys))
	pairs := make([][]string, 0, len(settableKeys))
	for _, key := range settableKeys {
		settings[key] = viper.GetString(key)
		pairs = append(pairs, []string{key, viper.GetString(key)})
	}

	if getFormat() == "json" {
		return output.JSON(settings)
	}

	output.Header("Configuration")
	fmt.Fprintln(output.Stdout)
	output.KeyValue(pairs)

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintln(output.Stdout)
		output.Info("Config file: " + viper.ConfigFileUsed())
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(args[0])
	value := args[1]

	if !slices.Contains(settableKeys, key) {
		output.Info("Valid keys: " + strings.Join(settableKeys, ", "))
		return fmt.Errorf("unknown config key: %s", key)
	}

	if key == "format" && value != "table" && value != "json" {
		return fmt.Errorf("format must be 'table' or 'json'")
	}

	viper.Set(key, value)

	configFile, err := configFilePath()
	if err != nil {
		return fmt.Errorf("could not find home directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("could not save config: %w", err)
	}

	output.Success(fmt.Sprintf("Set %s = %s", key, value))
	return nil
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	configFile, err := configFilePath()
	if err != nil {
		return fmt.Errorf("could not find home directory: %w", err)
	}

	if getFormat() == "json" {
		return output.JSON(map[string]string{
			"config_file": configFile,
			"config_dir":  filepath.Dir(configFile),
		})
	}

	fmt.Fprintln(output.Stdout, configFile)
	return nil
}
