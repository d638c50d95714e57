package config

import (
	"fmt"
	"path/filepath"

	"github.com/cognicore/commentprep/pkg/commentprep"
	"github.com/cognicore/commentprep/pkg/commentprep/lexicon"
	"github.com/cognicore/commentprep/pkg/commentprep/stopwords"
)

// Loader loads configuration files and constructs the pipeline.
type Loader struct {
	ConfigPath string

	// StoplistPath and LexiconPath override the paths named in the config
	// file.
	StoplistPath string
	LexiconPath  string
}

// Components holds everything built from configuration.
type Components struct {
	File         File
	Options      commentprep.Options
	Stopwords    stopwords.Set
	Lexicon      *lexicon.Lexicon
	Preprocessor *commentprep.Preprocessor
}

// Load reads the configuration and returns initialized components. With no
// ConfigPath the defaults are used.
func (l *Loader) Load() (*Components, error) {
	f := Default()
	baseDir := ""
	if l.ConfigPath != "" {
		loaded, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		f = *loaded
		baseDir = filepath.Dir(l.ConfigPath)
	}

	opts, err := f.Options()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	comp := &Components{File: f}

	// Load stoplist
	stoplistPath := l.StoplistPath
	if stoplistPath == "" && f.StoplistFile != "" {
		stoplistPath = resolve(baseDir, f.StoplistFile)
	}
	if stoplistPath != "" {
		set, err := stopwords.LoadFile(stoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stopwords = set
		opts.Stopwords = &comp.Stopwords
	} else {
		comp.Stopwords = stopwords.English()
	}

	// Load lexicon
	lexiconPath := l.LexiconPath
	if lexiconPath == "" && f.LexiconFile != "" {
		lexiconPath = resolve(baseDir, f.LexiconFile)
	}
	if lexiconPath != "" {
		lex, err := lexicon.LoadFromYAML(lexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
		opts.Lexicon = lex
	}

	p, err := commentprep.New(opts)
	if err != nil {
		return nil, fmt.Errorf("build preprocessor: %w", err)
	}
	comp.Options = opts
	comp.Preprocessor = p
	return comp, nil
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
