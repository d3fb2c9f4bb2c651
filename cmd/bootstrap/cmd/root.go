package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Generate validator keys, votes and finality certificates",
	// subcommands share flag names, so only the executing command's flags are bound
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("outdir", "o", "bootstrap",
		"output directory for generated files")

	log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cobra.OnInitialize(initConfig)
}

// initConfig lets every bound flag be set from a QCERT_ prefixed environment variable,
// e.g. QCERT_OUTDIR.
func initConfig() {
	viper.SetEnvPrefix("QCERT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func outdir() string {
	return viper.GetString("outdir")
}
