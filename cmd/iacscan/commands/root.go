package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veldtec/iacscan/internal/config"
	"github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     logger.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iacscan",
	Short: "Privacy-safe infrastructure change review for pull requests",
	Long: `iacscan is a CI pipeline step that reviews infrastructure-as-code
changes in a pull request. It compiles changed Bicep files, extracts resource
facts from the compiled templates, strips every potentially identifying or
secret-bearing value, and posts a review comment summarizing the change.

Nothing leaves the machine without passing the privacy validator: resource
names, identifiers, credentials, GUIDs and connection strings are removed
before any network transmission, and a second independent scan runs right
before the outbound call.`,
	Example: `  # Run the full review step inside a pipeline job
  iacscan review --pull-request 421

  # Inspect what would be extracted from local templates
  iacscan scan ./deploy/main.bicep

  # Check an arbitrary payload against the privacy rules
  iacscan validate payload.json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		log = logger.New(viper.GetString("logging.level"))
		return nil
	},
}

// Execute runs the root command and exits with the error's mapped code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.iacscan/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml, markdown)")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(newReviewCommand())
	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newVersionCommand())
}
