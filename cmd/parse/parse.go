package parse

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/scanio-analysis/pkg/expression"
	"github.com/scan-io-git/scanio-analysis/pkg/issues"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/config"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/errors"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/files"
	"github.com/scan-io-git/scanio-analysis/pkg/shared/logger"
)

// RunOptions holds flags for the parse command.
type RunOptions struct {
	RulesFile  string   `json:"rules_file,omitempty"`
	RuleID     string   `json:"rule_id,omitempty"`
	Inputs     []string `json:"inputs,omitempty"`
	OutputPath string   `json:"output_path,omitempty"`
	List       bool     `json:"list,omitempty"`
}

var (
	AppConfig *config.Config
	opts      RunOptions

	exampleParseUsage = `  # List the rules of a rules file
  scanio-analysis parse --rules parsers.yml --list

  # Create a report from compiler output
  scanio-analysis parse --rules parsers.yml --rule gcc --input build.log -o results/gcc.json`

	// ParseCmd creates a report from text files with a configured parser rule.
	ParseCmd = &cobra.Command{
		Use:                   "parse --rule ID --input PATH [--input PATH...] [--rules PATH] [--output PATH] | --list",
		Short:                 "Create a report from text output with a custom parser rule",
		Example:               exampleParseUsage,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		RunE:                  runParse,
	}
)

// Init wires config into this command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runParse(cmd *cobra.Command, args []string) error {
	lg := logger.NewLogger(AppConfig, "parse")

	if opts.RulesFile == "" && AppConfig != nil {
		opts.RulesFile = AppConfig.Parsers.RulesFile
	}
	if err := validate(&opts); err != nil {
		lg.Error("invalid arguments", "error", err)
		return errors.NewCommandError(opts, nil, fmt.Errorf("invalid arguments: %w", err), 1)
	}

	registry := expression.NewRegistry()
	if err := registry.Load(opts.RulesFile); err != nil {
		return errors.NewCommandError(opts, nil, err, 2)
	}

	if opts.List {
		for _, id := range registry.IDs() {
			rule, _ := registry.Get(id)
			fmt.Printf("%s\t%s\n", id, rule.DisplayName())
		}
		return nil
	}

	report, err := Run(registry, opts, lg)
	if err != nil {
		lg.Error("parse failed", "error", err)
		return errors.NewCommandError(opts, nil, err, 2)
	}
	fmt.Printf("Found %d issues with parser rule '%s'\n", report.Size(), report.Name)
	return nil
}

// Run applies the selected rule to all inputs and writes the report when an
// output path is set.
func Run(registry *expression.Registry, o RunOptions, lg hclog.Logger) (*issues.Report, error) {
	parser, err := registry.Parser(o.RuleID)
	if err != nil {
		return nil, err
	}
	rule := parser.Rule()
	report := issues.NewReport(rule.ID, rule.DisplayName())

	for _, input := range o.Inputs {
		if err := parseFile(parser, input, report); err != nil {
			return nil, err
		}
		lg.Debug("parsed input", "file", input, "issues", report.Size())
	}

	if o.OutputPath != "" {
		if err := files.WriteJSON(o.OutputPath, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func parseFile(parser *expression.Parser, path string, report *issues.Report) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", path, err)
	}
	defer file.Close()

	return parser.Parse(file, path, report)
}

func validate(o *RunOptions) error {
	if strings.TrimSpace(o.RulesFile) == "" {
		return fmt.Errorf("--rules is required when parsers.rules_file is not configured")
	}
	if o.List {
		return nil
	}
	if strings.TrimSpace(o.RuleID) == "" {
		return fmt.Errorf("--rule is required")
	}
	if len(o.Inputs) == 0 {
		return fmt.Errorf("at least one --input is required")
	}
	for i, input := range o.Inputs {
		expanded, err := files.ExpandPath(input)
		if err != nil {
			return err
		}
		if err := files.ValidatePath(expanded); err != nil {
			return fmt.Errorf("invalid --input: %w", err)
		}
		o.Inputs[i] = expanded
	}
	return nil
}

func init() {
	ParseCmd.Flags().StringVar(&opts.RulesFile, "rules", "", "YAML file with parser rules (defaults to parsers.rules_file)")
	ParseCmd.Flags().StringVar(&opts.RuleID, "rule", "", "Id of the parser rule to apply")
	ParseCmd.Flags().StringArrayVar(&opts.Inputs, "input", nil, "Text file to parse (repeat for several files)")
	ParseCmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Path to write the report as JSON")
	ParseCmd.Flags().BoolVar(&opts.List, "list", false, "List the available rules")
	ParseCmd.Flags().BoolP("help", "h", false, "Show help for parse command.")
}
