package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mind-engage/gearscore/internal/logger"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gearctl",
	Short: "Diablo 4 gear grader tooling",
	Long: `gearctl keeps the per-class affix reference list up to date and grades
gear evaluation requests offline with the same scorer the HTTP service uses.

Settings come from flags, then environment variables (AFFIX_DB_PATH,
GOOGLE_API_KEY, GEMINI_MODEL, LOG_LEVEL), then .gearctl.yaml.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(viper.GetString("log-level"))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default .gearctl.yaml in the working directory)")
	rootCmd.PersistentFlags().String("db", "./data/affixes.json", "Path of the affix reference database")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")

	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindEnv("db", "AFFIX_DB_PATH")
	_ = viper.BindEnv("log-level", "LOG_LEVEL")
	_ = viper.BindEnv("api-key", "GOOGLE_API_KEY")
	_ = viper.BindEnv("model", "GEMINI_MODEL")
	_ = viper.BindEnv("base-url", "GEMINI_BASE_URL")
	viper.SetDefault("model", "gemini-1.5-flash")
	viper.SetDefault("base-url", "https://generativelanguage.googleapis.com/v1beta")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".gearctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
