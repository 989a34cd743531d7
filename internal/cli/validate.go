package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parlancehq/parlance/internal/relation"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	LanguageDir string
}

// ValidationSummary holds the statistics of a successful validation.
type ValidationSummary struct {
	Agent     string   `json:"agent"`
	Intents   int      `json:"intents"`
	Entities  int      `json:"entities"`
	Languages []string `json:"languages"`
	Files     int      `json:"files"`
}

func (s ValidationSummary) String() string {
	return fmt.Sprintf("Agent %s is valid: %d intent(s), %d entities, languages [%s]",
		s.Agent, s.Intents, s.Entities, strings.Join(s.Languages, " "))
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <agent-dir>",
		Short: "Validate an agent definition",
		Long: `Validate an agent definition directory: CUE declarations, language
resources, example utterance templates and follow relations.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.LanguageDir, "language-dir", "", "language resources directory (default <agent-dir>/language)")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
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
	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, dir)

	if len(loadErrors) > 0 {
		return reportLoadErrors(formatter, loadErrors)
	}

	// Cycles in the follow graph are only detectable on the whole relation.
	if _, err := relation.Build(result.Agent); err != nil {
		return reportLoadError(formatter, convertDefinitionError(err), ExitFailure)
	}

	languages := make([]string, 0, len(result.Agent.Languages()))
	for _, code := range result.Agent.Languages() {
		languages = append(languages, string(code))
	}
	return formatter.Success(ValidationSummary{
		Agent:     result.Agent.Name(),
		Intents:   len(result.Agent.Intents()),
		Entities:  len(result.Agent.Entities()),
		Languages: languages,
		Files:     result.FileCount,
	})
}

func reportLoadError(formatter *OutputFormatter, err error, exitCode int) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		formatter.Error(loadErr.Code, loadErr.Message, nil)
	} else {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
	}
	return &ExitError{Code: exitCode, Message: err.Error(), Err: err}
}

func reportLoadErrors(formatter *OutputFormatter, errs []error) error {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	formatter.Error(ErrCodeDefinition,
		fmt.Sprintf("definition has %d error(s)", len(errs)), messages)
	return &ExitError{Code: ExitFailure, Message: strings.Join(messages, "; ")}
}
