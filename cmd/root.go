package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-analysis/cmd/aggregate"
	"github.com/scan-io-git/scanio-analysis/cmd/blame"
	"github.com/scan-io-git/scanio-analysis/cmd/history"
	"github.com/scan-io-git/scanio-analysis/cmd/parse"
	"github.com/scan-io-git/scanio-analysis/cmd/scan"
	"github.com/scan-io-git/scanio-analysis/cmd/version"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
	sharederrors "github.com/scan-io-git/scanio-analysis/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "scanio-analysis [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Imports static analysis findings and tracks them across runs.",
		Long: `scanio-analysis imports the issues of an Axivion dashboard project, attributes them to
	commits with git blame and compares them with a reference run to report new, fixed and
	outstanding issues.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $"+config.EnvConfigPath+")")

	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(blame.BlameCmd)
	rootCmd.AddCommand(aggregate.AggregateCmd)
	rootCmd.AddCommand(history.HistoryCmd)
	rootCmd.AddCommand(parse.ParseCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		var cmdErr *sharederrors.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode != 0 {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	AppConfig, err = config.NewConfig(cfgFile)
	if err != nil {
		fmt.Printf("initializing config file function is crashed - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	version.Init(AppConfig)
	scan.Init(AppConfig)
	blame.Init(AppConfig)
	aggregate.Init(AppConfig)
	history.Init(AppConfig)
	parse.Init(AppConfig)
}
