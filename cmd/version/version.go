package version

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-analysis/pkg/blame"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = runtime.Version()
	BuildTime     = "unknown"
)

// Versions holds version information for the application and its blamer plugin.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
	BlamerPlugin  string `json:"blamer_plugin,omitempty"`
	PluginStatus  string `json:"plugin_status,omitempty"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		Run: func(cmd *cobra.Command, args []string) {
			printVersionInfo(collectVersions(AppConfig))
		},
	}
}

func collectVersions(cfg *config.Config) Versions {
	v := Versions{
		Version:       CoreVersion,
		GolangVersion: GolangVersion,
		BuildTime:     BuildTime,
	}
	if cfg == nil || cfg.Blame.PluginPath == "" {
		return v
	}

	v.BlamerPlugin = cfg.Blame.PluginPath
	if _, err := os.Stat(cfg.Blame.PluginPath); err != nil {
		v.PluginStatus = "missing"
	} else {
		v.PluginStatus = fmt.Sprintf("protocol v%d", blame.HandshakeConfig.ProtocolVersion)
	}
	return v
}

// printVersionInfo prints the version information for the application.
func printVersionInfo(v Versions) {
	fmt.Printf("Core Version: v%s\n", v.Version)
	if v.BlamerPlugin != "" {
		fmt.Printf("Blamer Plugin: %s (%s)\n", v.BlamerPlugin, v.PluginStatus)
	}
	fmt.Printf("Go Version: %s\n", v.GolangVersion)
	fmt.Printf("Build Time: %s\n", v.BuildTime)
}
