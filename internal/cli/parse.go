package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parlancehq/parlance/internal/connector"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	LanguageDir string
	Service     string
	Input       string
	Contexts    []string
	Invocation  string
	Language    string
}

// PredictionSummary is the command's view of a decoded prediction.
type PredictionSummary struct {
	Intent                string         `json:"intent"`
	Parameters            map[string]any `json:"parameters"`
	Confidence            *float64       `json:"confidence,omitempty"`
	FulfillmentText       string         `json:"fulfillment_text,omitempty"`
	Language              string         `json:"language"`
	SlotFillingIncomplete bool           `json:"slot_filling_incomplete"`
	ContextMismatch       bool           `json:"context_mismatch"`
	Contexts              []string       `json:"contexts,omitempty"`
}

func (s PredictionSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intent: %s", s.Intent)
	if s.Confidence != nil {
		fmt.Fprintf(&b, " (confidence %.2f)", *s.Confidence)
	}
	for name, value := range s.Parameters {
		fmt.Fprintf(&b, "\n  %s = %v", name, value)
	}
	if s.FulfillmentText != "" {
		fmt.Fprintf(&b, "\nResponse: %s", s.FulfillmentText)
	}
	if s.SlotFillingIncomplete {
		b.WriteString("\nSlot filling incomplete: a required parameter is missing")
	}
	if s.ContextMismatch {
		b.WriteString("\nContext mismatch: intent not reachable from the active contexts")
	}
	return b.String()
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <agent-dir>",
		Short: "Decode a raw service response into a prediction",
		Long: `Decode a raw prediction service response (read from --input or stdin)
against an agent definition, reporting the matched intent, its coerced
parameters and the slot filling state.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Service, "service", "s", "", fmt.Sprintf("source service (%s)", strings.Join(ValidServices, "|")))
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "-", "response file, or - for stdin")
	cmd.Flags().StringSliceVar(&opts.Contexts, "context", nil, "active context names, for reachability annotation")
	cmd.Flags().StringVar(&opts.LanguageDir, "language-dir", "", "language resources directory (default <agent-dir>/language)")
	cmd.Flags().StringVar(&opts.Invocation, "invocation", "", "skill invocation name (alexa)")
	cmd.Flags().StringVar(&opts.Language, "language", "", "engine language (snips, default the agent's first language)")
	cmd.MarkFlagRequired("service")

	return cmd
}

func runParse(opts *ParseOptions, dir string, cmd *cobra.Command) error {
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

	conn, err := buildConnector(&ExportOptions{
		RootOptions: opts.RootOptions,
		Service:     opts.Service,
		Invocation:  opts.Invocation,
		Language:    opts.Language,
	}, result.Agent)
	if err != nil {
		return reportLoadError(formatter, err, ExitCommandError)
	}

	raw, err := readInput(opts.Input, cmd.InOrStdin())
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return &ExitError{Code: ExitCommandError, Message: err.Error(), Err: err}
	}

	prediction, err := conn.Parse(raw, opts.Contexts)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
	}

	summary := PredictionSummary{
		Intent:                prediction.Intent.Name,
		Parameters:            prediction.Parameters,
		FulfillmentText:       prediction.FulfillmentText,
		Language:              string(prediction.Language),
		SlotFillingIncomplete: prediction.SlotFillingIncomplete,
		ContextMismatch:       prediction.ContextMismatch,
	}
	if prediction.Confidence != connector.ConfidenceNotReported {
		confidence := prediction.Confidence
		summary.Confidence = &confidence
	}
	for _, ctx := range prediction.Contexts {
		summary.Contexts = append(summary.Contexts, fmt.Sprintf("%s (%d)", ctx.Name, ctx.Lifespan))
	}
	return formatter.Success(summary)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}
