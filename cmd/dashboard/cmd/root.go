package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rohianon/equishare-dashboard/pkg/config"
	"github.com/Rohianon/equishare-dashboard/pkg/logger"
)

const configDirName = ".equishare-dashboard"

var (
	cfgFile      string
	outputFormat string

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "EquiShare Dashboard - your portfolio in the terminal",
	Long: titleStyle.Render(`
╔═══════════════════════════════════════════════════════════╗
║  EquiShare Dashboard - Portfolio at a glance              ║
╚═══════════════════════════════════════════════════════════╝
`) + `
View holdings, totals and cash from your portfolio backend.
On a development backend you can also add holdings and set the balance.

Get started:
  dashboard show                 Show the portfolio
  dashboard show --watch         Keep it on screen, re-laid out on resize
  dashboard holding add --help   Add a holding
  dashboard balance set 2500     Set the account balance`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitWithWriter(os.Stderr, "dashboard-cli", viper.GetString("log.level"), true)
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/"+configDirName+"/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "output format: table, json")

	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName), nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
			os.Exit(1)
		}

		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Set defaults
	config.SetDefaults(viper.GetViper())
	viper.SetDefault("format", "table")
	viper.SetDefault("origin", "")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("terminal.breakpoint", 100)
	viper.SetDefault("terminal.refresh", "30s")

	viper.SetEnvPrefix("DASHBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and env apply
	_ = viper.ReadInConfig()
}

func getFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("format")
}
