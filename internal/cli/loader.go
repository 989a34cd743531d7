package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/parlancehq/parlance/internal/language"
	"github.com/parlancehq/parlance/internal/model"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading an agent definition.
type LoadResult struct {
	Agent     *model.Agent
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during definition loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// Definition validation errors
	ErrCodeAgentBlock    = "E101" // Missing or invalid agent block
	ErrCodeInvalidEntity = "E102" // Invalid entity declaration
	ErrCodeInvalidIntent = "E103" // Invalid intent declaration
	ErrCodeInvalidParam  = "E104" // Invalid parameter declaration
	ErrCodeInvalidFollow = "E105" // Invalid follow declaration
	ErrCodeLanguageData  = "E106" // Language resource loading failed
	ErrCodeDefinition    = "E107" // Agent-level definition error
)

// systemTypes resolves the sys.* type names usable in parameter
// declarations.
var systemTypes = map[string]model.SystemType{}

func init() {
	for _, t := range []model.SystemType{
		model.SysDate, model.SysTime, model.SysInteger, model.SysEmail,
		model.SysPhoneNumber, model.SysColor, model.SysLanguage, model.SysURL,
		model.SysPerson, model.SysMusicArtist, model.SysMusicGenre,
	} {
		systemTypes[string(t)] = t
	}
}

// LoadAgent loads an agent definition from a directory of CUE files plus its
// language resources from languageDir (defaulting to <dir>/language). The
// definition declares an agent block, an entity struct and an intent struct:
//
//	agent: {name: "pizzeria", languages: ["en", "it"]}
//	entity: PizzaType: {}
//	intent: "order.make_pizza": {
//		parameters: pizza_type: {type: "PizzaType", required: true}
//		follows: [{parent: "order.start"}]
//	}
func LoadAgent(dir, languageDir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("agent directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing agent directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{CUEValue: value, FileCount: len(cueFiles)}

	agent, agentErrs := buildAgent(value, mode)
	errs = append(errs, agentErrs...)
	if agent == nil || (mode == LoadModeFailFast && len(errs) > 0) {
		return result, errs
	}
	result.Agent = agent

	if languageDir == "" {
		languageDir = filepath.Join(dir, "language")
	}
	if _, statErr := os.Stat(languageDir); statErr == nil {
		resources, loadErr := language.LoadDir(languageDir)
		if loadErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeLanguageData, Message: loadErr.Error()})
			return result, errs
		}
		agent.SetResources(resources)
	}

	if validateErr := agent.Validate(); validateErr != nil {
		errs = append(errs, convertDefinitionError(validateErr))
	}
	return result, errs
}

func buildAgent(value cue.Value, mode LoadMode) (*model.Agent, []error) {
	var errs []error

	agentVal := value.LookupPath(cue.ParsePath("agent"))
	if !agentVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeAgentBlock, Message: "definition has no agent block"}}
	}
	name, err := agentVal.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeAgentBlock, Message: fmt.Sprintf("agent.name: %v", err), Pos: agentVal.Pos()}}
	}
	var codes []language.Code
	langsVal := agentVal.LookupPath(cue.ParsePath("languages"))
	if langsVal.Exists() {
		var tags []string
		if err := langsVal.Decode(&tags); err != nil {
			return nil, []error{&LoadError{Code: ErrCodeAgentBlock, Message: fmt.Sprintf("agent.languages: %v", err), Pos: langsVal.Pos()}}
		}
		for _, tag := range tags {
			codes = append(codes, language.Code(tag))
		}
	}
	agent := model.NewAgent(name, codes...)

	entitiesVal := value.LookupPath(cue.ParsePath("entity"))
	if entitiesVal.Exists() {
		iter, iterErr := entitiesVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeInvalidEntity, Message: fmt.Sprintf("iterating entities: %v", iterErr)})
			if mode == LoadModeFailFast {
				return agent, errs
			}
		} else {
			for iter.Next() {
				if err := registerEntity(agent, iter.Label(), iter.Value()); err != nil {
					errs = append(errs, err)
					if mode == LoadModeFailFast {
						return agent, errs
					}
				}
			}
		}
	}

	intentsVal := value.LookupPath(cue.ParsePath("intent"))
	if intentsVal.Exists() {
		iter, iterErr := intentsVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeInvalidIntent, Message: fmt.Sprintf("iterating intents: %v", iterErr)})
			if mode == LoadModeFailFast {
				return agent, errs
			}
		} else {
			for iter.Next() {
				if err := registerIntent(agent, iter.Label(), iter.Value()); err != nil {
					errs = append(errs, err)
					if mode == LoadModeFailFast {
						return agent, errs
					}
				}
			}
		}
	}

	if len(agent.Intents()) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeInvalidIntent, Message: "no intents found in definition"})
	}
	return agent, errs
}

func registerEntity(agent *model.Agent, name string, value cue.Value) error {
	e := &model.Entity{Name: name}
	e.Regex, _ = value.LookupPath(cue.ParsePath("regex")).Bool()
	e.AutomatedExpansion, _ = value.LookupPath(cue.ParsePath("automated_expansion")).Bool()
	e.FuzzyMatching, _ = value.LookupPath(cue.ParsePath("fuzzy_matching")).Bool()
	if err := agent.RegisterEntity(e); err != nil {
		return convertDefinitionError(err)
	}
	return nil
}

func registerIntent(agent *model.Agent, name string, value cue.Value) error {
	it := &model.Intent{Name: name}

	paramsVal := value.LookupPath(cue.ParsePath("parameters"))
	if paramsVal.Exists() {
		iter, err := paramsVal.Fields()
		if err != nil {
			return &LoadError{Code: ErrCodeInvalidParam, Message: fmt.Sprintf("intent %s: %v", name, err), Pos: paramsVal.Pos()}
		}
		for iter.Next() {
			p, err := buildParameter(agent, name, iter.Label(), iter.Value())
			if err != nil {
				return err
			}
			it.Parameters = append(it.Parameters, p)
		}
	}

	followsVal := value.LookupPath(cue.ParsePath("follows"))
	if followsVal.Exists() {
		iter, err := followsVal.List()
		if err != nil {
			return &LoadError{Code: ErrCodeInvalidFollow, Message: fmt.Sprintf("intent %s: follows must be a list: %v", name, err), Pos: followsVal.Pos()}
		}
		for iter.Next() {
			parent, err := iter.Value().LookupPath(cue.ParsePath("parent")).String()
			if err != nil {
				return &LoadError{Code: ErrCodeInvalidFollow, Message: fmt.Sprintf("intent %s: follow parent: %v", name, err), Pos: iter.Value().Pos()}
			}
			lifespan := -1
			if lv := iter.Value().LookupPath(cue.ParsePath("lifespan")); lv.Exists() {
				n, err := lv.Int64()
				if err != nil {
					return &LoadError{Code: ErrCodeInvalidFollow, Message: fmt.Sprintf("intent %s: follow lifespan: %v", name, err), Pos: lv.Pos()}
				}
				lifespan = int(n)
			}
			it.Follows = append(it.Follows, model.Follow{Parent: parent, Lifespan: lifespan})
		}
	}

	if err := agent.RegisterIntent(it); err != nil {
		return convertDefinitionError(err)
	}
	return nil
}

func buildParameter(agent *model.Agent, intentName, paramName string, value cue.Value) (model.Parameter, error) {
	typeName, err := value.LookupPath(cue.ParsePath("type")).String()
	if err != nil {
		return model.Parameter{}, &LoadError{
			Code:    ErrCodeInvalidParam,
			Message: fmt.Sprintf("intent %s: parameter %s: type: %v", intentName, paramName, err),
			Pos:     value.Pos(),
		}
	}

	var entityType model.EntityType
	if sys, ok := systemTypes[typeName]; ok {
		entityType = sys
	} else if e := agent.Entity(typeName); e != nil {
		entityType = e
	} else {
		return model.Parameter{}, &LoadError{
			Code:    ErrCodeInvalidParam,
			Message: fmt.Sprintf("intent %s: parameter %s: unknown type %q", intentName, paramName, typeName),
			Pos:     value.Pos(),
		}
	}

	p := model.Parameter{Name: paramName, Type: entityType}
	p.IsList, _ = value.LookupPath(cue.ParsePath("is_list")).Bool()
	p.Required, _ = value.LookupPath(cue.ParsePath("required")).Bool()
	if dv := value.LookupPath(cue.ParsePath("default")); dv.Exists() {
		var def any
		if err := dv.Decode(&def); err != nil {
			return model.Parameter{}, &LoadError{
				Code:    ErrCodeInvalidParam,
				Message: fmt.Sprintf("intent %s: parameter %s: default: %v", intentName, paramName, err),
				Pos:     dv.Pos(),
			}
		}
		p.Default = def
	}
	return p, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertDefinitionError converts an agent definition error to a LoadError.
func convertDefinitionError(err error) error {
	var defErr *model.DefinitionError
	if errors.As(err, &defErr) {
		return &LoadError{Code: ErrCodeDefinition, Message: defErr.Error()}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}
