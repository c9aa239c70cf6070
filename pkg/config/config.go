// Package config loads YAML pipeline definitions and constructs the
// configured stages. Property errors and unlocatable backing resources are
// configuration errors, surfaced before any annotation work begins.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wehubfusion/Daedalus/pkg/annotators/parse"
	"github.com/wehubfusion/Daedalus/pkg/annotators/postag"
	"github.com/wehubfusion/Daedalus/pkg/annotators/tokenize"
	"github.com/wehubfusion/Daedalus/pkg/capability"
	"github.com/wehubfusion/Daedalus/pkg/engine"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
	"github.com/wehubfusion/Daedalus/pkg/pipeline"
)

// File is a YAML pipeline definition.
type File struct {
	// NThreads is the engine instance count per stage run.
	NThreads int `yaml:"nThreads"`
	// FailurePolicy is "continue" (default) or "abort".
	FailurePolicy string `yaml:"failurePolicy"`
	// Stages is the ordered stage list.
	Stages []StageSpec `yaml:"stages"`
}

// StageSpec configures one stage.
type StageSpec struct {
	// Name optionally overrides the stage name.
	Name string `yaml:"name"`
	// Type is the stage kind: tokenize, postag or parse.
	Type string `yaml:"type"`
	// Dict is a path to a multi-word dictionary (tokenize), one phrase per line.
	Dict string `yaml:"dict"`
	// Variant is the dictionary variant letter: A, B or C (tokenize).
	Variant string `yaml:"variant"`
	// Lexicon is a path to a word/tag lexicon (postag), tab-separated.
	Lexicon string `yaml:"lexicon"`
	// Engine binds a backing engine (parse).
	Engine EngineSpec `yaml:"engine"`
}

// EngineSpec binds a stage to a backing engine variant.
type EngineSpec struct {
	// Type is "script" or "process".
	Type string `yaml:"type"`
	// Script is the path to the JavaScript source (script engines).
	Script string `yaml:"script"`
	// Command is the executable to spawn (process engines).
	Command string `yaml:"command"`
	// Args are the command arguments.
	Args []string `yaml:"args"`
	// Sentinel is the end-of-output line. Default: EOS.
	Sentinel string `yaml:"sentinel"`
}

// Load reads and parses a pipeline definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Configuration("reading pipeline definition "+path, err)
	}
	return Parse(data)
}

// Parse parses a YAML pipeline definition.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, apperrors.Configuration("parsing pipeline definition", err)
	}
	if len(f.Stages) == 0 {
		return nil, apperrors.Configuration("pipeline definition has no stages", nil)
	}
	return &f, nil
}

// Build constructs the configured stages and pipeline configuration.
func (f *File) Build(logger *zap.Logger) ([]pipeline.Stage, pipeline.Config, error) {
	cfg := pipeline.DefaultConfig().WithLogger(logger)

	policy, err := pipeline.ParseFailurePolicy(f.FailurePolicy)
	if err != nil {
		return nil, cfg, err
	}
	cfg = cfg.WithFailurePolicy(policy)
	if f.NThreads > 0 {
		cfg = cfg.WithNThreads(f.NThreads)
	}

	stages := make([]pipeline.Stage, 0, len(f.Stages))
	for i, spec := range f.Stages {
		st, err := spec.build(cfg.Logger)
		if err != nil {
			return nil, cfg, apperrors.Configuration(
				fmt.Sprintf("building stage %d (%s)", i+1, spec.Type), err)
		}
		stages = append(stages, st)
	}
	return stages, cfg, nil
}

func (s StageSpec) build(logger *zap.Logger) (pipeline.Stage, error) {
	switch s.Type {
	case "tokenize":
		if s.Dict == "" {
			return tokenize.New(), nil
		}
		variant, err := dictVariant(s.Variant)
		if err != nil {
			return nil, err
		}
		phrases, err := readLines(s.Dict)
		if err != nil {
			return nil, apperrors.Configuration("reading tokenizer dictionary "+s.Dict, err)
		}
		return tokenize.NewWithDict(variant, tokenize.NewDict(phrases)), nil

	case "postag":
		lexicon := map[string]string{}
		if s.Lexicon != "" {
			var err error
			lexicon, err = readLexicon(s.Lexicon)
			if err != nil {
				return nil, apperrors.Configuration("reading tagger lexicon "+s.Lexicon, err)
			}
		}
		return postag.New(lexicon), nil

	case "parse":
		factory, err := s.Engine.factory(logger)
		if err != nil {
			return nil, err
		}
		var opts []parse.Option
		if s.Name != "" {
			opts = append(opts, parse.WithName(s.Name))
		}
		return parse.New(factory, opts...), nil

	default:
		return nil, apperrors.Configurationf("unknown stage type %q (want tokenize, postag or parse)", s.Type)
	}
}

func (e EngineSpec) factory(logger *zap.Logger) (engine.Factory, error) {
	switch e.Type {
	case "script":
		if e.Script == "" {
			return nil, apperrors.Configuration("script engine requires a script path", nil)
		}
		src, err := os.ReadFile(e.Script)
		if err != nil {
			return nil, apperrors.Configuration("reading engine script "+e.Script, err)
		}
		return engine.ScriptFactory(string(src)), nil

	case "process":
		cfg := engine.ProcessConfig{
			Command:  e.Command,
			Args:     e.Args,
			Sentinel: e.Sentinel,
			Logger:   logger,
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return engine.ProcessFactory(cfg), nil

	default:
		return nil, apperrors.Configurationf("unknown engine type %q (want script or process)", e.Type)
	}
}

func dictVariant(variant string) (capability.Capability, error) {
	switch strings.ToUpper(variant) {
	case "A":
		return capability.TokenizeWithDictA, nil
	case "B":
		return capability.TokenizeWithDictB, nil
	case "C":
		return capability.TokenizeWithDictC, nil
	default:
		return "", apperrors.Configurationf("unknown dictionary variant %q (want A, B or C)", variant)
	}
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func readLexicon(path string) (map[string]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	lexicon := make(map[string]string, len(lines))
	for _, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed lexicon line %q (want word<TAB>tag)", line)
		}
		lexicon[fields[0]] = fields[1]
	}
	return lexicon, nil
}
