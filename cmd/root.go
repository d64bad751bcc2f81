package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var logger *zap.SugaredLogger
var verboseLogging bool

var rootCmd = &cobra.Command{
	Use:           "postura",
	Short:         "Static security posture auditing for project trees",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(".")
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".postura")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()

		// init logger
		var l *zap.Logger
		if verboseLogging {
			l, _ = zap.NewDevelopment()
		} else {
			l, _ = zap.NewProduction()
		}
		logger = l.Sugar()

		applyConfigDefaults(cmd)

		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debugf("config=%s", used)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorError("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.postura.yaml or $HOME/.postura.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verboseLogging, "debug", false, "enable debug logging")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}
