package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/connector/alexa"
	"github.com/parlancehq/parlance/internal/connector/dialogflow"
	"github.com/parlancehq/parlance/internal/connector/snips"
	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/model"
)

// ValidServices are the prediction services agents can be exported to.
var ValidServices = []string{"dialogflow", "alexa", "snips"}

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	LanguageDir string
	Service     string
	Output      string
	WebhookURL  string // dialogflow only
	Invocation  string // alexa only
	Language    string // snips only
}

// ExportSummary holds the result of a successful export.
type ExportSummary struct {
	Service string   `json:"service"`
	Output  string   `json:"output"`
	Files   []string `json:"files"`
	Gaps    []string `json:"gaps,omitempty"`
}

func (s ExportSummary) String() string {
	msg := fmt.Sprintf("Exported %d file(s) for %s to %s", len(s.Files), s.Service, s.Output)
	if len(s.Gaps) > 0 {
		msg += fmt.Sprintf("\n%d capability gap(s):", len(s.Gaps))
		for _, gap := range s.Gaps {
			msg += "\n  - " + gap
		}
	}
	return msg
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <agent-dir>",
		Short: "Export an agent to a prediction service schema",
		Long: `Export an agent definition into the native schema of a prediction
service. The export is deterministic: the same definition always produces the
same files. Features the service cannot represent are reported as capability
gaps.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Service, "service", "s", "", fmt.Sprintf("target service (%s)", strings.Join(ValidServices, "|")))
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&opts.LanguageDir, "language-dir", "", "language resources directory (default <agent-dir>/language)")
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "fulfillment webhook URL (dialogflow)")
	cmd.Flags().StringVar(&opts.Invocation, "invocation", "", "skill invocation name (alexa)")
	cmd.Flags().StringVar(&opts.Language, "language", "", "dataset language (snips, default the agent's first language)")
	cmd.MarkFlagRequired("service")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(opts *ExportOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result, loadErrors := LoadAgent(dir, opts.LanguageDir, LoadModeCollectAll)
	if result == nil && len(loadErrors) > 0 {
		return reportLoadError(formatter, loadErrors[0], ExitCommandError)
	}
	if len(loadErrors) > 0 {
		return reportLoadErrors(formatter, loadErrors)
	}

	conn, err := buildConnector(opts, result.Agent)
	if err != nil {
		return reportLoadError(formatter, err, ExitCommandError)
	}

	export, err := conn.Export()
	if err != nil {
		formatter.Error(ErrCodeDefinition, err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
	}

	encoded, err := export.Encode()
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
	}

	files := make([]string, 0, len(encoded))
	for _, file := range export.Files() {
		target := filepath.Join(opts.Output, filepath.FromSlash(file.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: err.Error(), Err: err}
		}
		if err := os.WriteFile(target, encoded[file.Path], 0o644); err != nil {
			formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return &ExitError{Code: ExitCommandError, Message: err.Error(), Err: err}
		}
		formatter.VerboseLog("Wrote %s", target)
		files = append(files, file.Path)
	}

	gaps := make([]string, 0, len(export.Gaps()))
	for _, gap := range export.Gaps() {
		gaps = append(gaps, gap.String())
	}
	return formatter.Success(ExportSummary{
		Service: export.Service,
		Output:  opts.Output,
		Files:   files,
		Gaps:    gaps,
	})
}

// buildConnector constructs the connector selected by --service, applying the
// service-specific flags.
func buildConnector(opts *ExportOptions, agent *model.Agent) (connector.Connector, error) {
	switch opts.Service {
	case "dialogflow":
		var connOpts []dialogflow.Option
		if opts.WebhookURL != "" {
			connOpts = append(connOpts, dialogflow.WithWebhook(dialogflow.Webhook{URL: opts.WebhookURL}))
		}
		return dialogflow.New(agent, connOpts...)
	case "alexa":
		invocation := opts.Invocation
		if invocation == "" {
			invocation = strings.ReplaceAll(strings.ToLower(agent.Name()), "_", " ")
		}
		return alexa.New(agent, invocation)
	case "snips":
		lang := agent.Languages()[0]
		if opts.Language != "" {
			lang = language.Code(opts.Language)
		}
		return snips.New(agent, lang)
	default:
		return nil, &LoadError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("unknown service %q: must be one of %v", opts.Service, ValidServices),
		}
	}
}
