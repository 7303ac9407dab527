package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/edumetric-labs/edumetric/internal/cli/config"
)

// projectFile is the layout of a generated edumetric.yaml.
type projectFile struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Output string `yaml:"output"`
	UI     struct {
		Port     int  `yaml:"port"`
		AutoOpen bool `yaml:"auto_open"`
	} `yaml:"ui"`
	Alert struct {
		MentorEmail string `yaml:"mentor_email,omitempty"`
		RulesFile   string `yaml:"rules_file,omitempty"`
	} `yaml:"alert"`
	Batch struct {
		Mode     string `yaml:"mode"`
		WatchDir string `yaml:"watch_dir"`
	} `yaml:"batch"`
}

// RulesFileName is the alert rules script written by init --rules.
const RulesFileName = "alert_rules.star"

const sampleRules = `# Alert level rules for EduMetric mentor alerts.
#
# predictions: performance_label, risk_label, dropout_label
# features:    attendance_pct, internal_pct, behavior_pct, risk_score, ...
#
# Return "critical", "high", "medium" or "low". Any other value falls back
# to the built-in rules.

def alert_level(predictions, features):
    if predictions["risk_label"] == "high" or features["attendance_pct"] < 60:
        return "critical"
    if predictions["dropout_label"] == "high":
        return "critical"
    if predictions["risk_label"] == "medium" or features["attendance_pct"] < 75:
        return "high"
    if predictions["performance_label"] == "high":
        return "low"
    return "medium"
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force, rules bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an edumetric.yaml configuration",
		Long: `Create an edumetric.yaml configuration file with default settings and
the batch drop folder.

Flags given on the command line (for example --api-url) are written into
the file. Use --rules to also create a sample alert rules script.`,
		Example: `  # Initialize in the current directory
  edumetric init

  # Point at a remote server and add alert rules
  edumetric init --api-url https://analytics.example.edu --rules`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force, rules)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	cmd.Flags().BoolVar(&rules, "rules", false, "Also write a sample "+RulesFileName)

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force, rules bool) error {
	e := getEnv(cmd)

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, config.FileNames[0])
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}

	var pf projectFile
	pf.API.BaseURL = e.cfg.API.BaseURL
	pf.API.Timeout = e.cfg.API.Timeout.String()
	pf.Output = e.cfg.OutputFormat
	pf.UI.Port = e.cfg.UI.Port
	pf.UI.AutoOpen = e.cfg.UI.AutoOpen
	pf.Alert.MentorEmail = e.cfg.Alert.MentorEmail
	pf.Batch.Mode = e.cfg.Batch.Mode
	pf.Batch.WatchDir = e.cfg.Batch.WatchDir
	if rules {
		pf.Alert.RulesFile = RulesFileName
	}

	data, err := yaml.Marshal(&pf)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	header := []byte("# EduMetric configuration. Environment variables (EDUMETRIC_API_BASE_URL, ...)\n# and command-line flags override these values.\n")
	if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	e.r.Success("Created " + path)

	if rules {
		rulesPath := filepath.Join(dir, RulesFileName)
		if _, err := os.Stat(rulesPath); err == nil && !force {
			e.r.Warning(rulesPath + " already exists, keeping it")
		} else {
			if err := os.WriteFile(rulesPath, []byte(sampleRules), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", rulesPath, err)
			}
			e.r.Success("Created " + rulesPath)
		}
	}

	inbox := e.cfg.Batch.WatchDir
	if !filepath.IsAbs(inbox) {
		inbox = filepath.Join(dir, inbox)
	}
	if err := os.MkdirAll(inbox, 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", inbox, err)
	}
	e.r.Muted("Drop spreadsheets into " + inbox + " and run: edumetric batch watch")
	return nil
}
