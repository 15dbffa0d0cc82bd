package configfile

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/morfien101/splitstream/configfile/templating"
	"gopkg.in/yaml.v2"
)

// Config is a struct that represents the YAML or TOML file that we want to pass in.
type Config struct {
	SourceManager       SourceManager        `yaml:"source_manager" toml:"source_manager"`
	Splitter            SplitterConfig       `yaml:"splitter" toml:"splitter"`
	Sources             Sources              `yaml:"sources" toml:"sources"`
	DefaultLoggerConfig DefaultLoggerDetails `yaml:"default_logger_config" toml:"default_logger_config"`
}

// New will return a new config file if one can be read from the location
// specified. An error is also returned if something goes wrong.
// Files ending in .toml are read as TOML, everything else as YAML.
func New(filePath string) (*Config, error) {
	// Digest the config file
	fileBytes, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("could not read config file. Error: %s", err)
	}

	decoded, err := templating.GenerateTemplate(fileBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decode template. Error: %s", err)
	}
	newConfig := blankConfig()

	if strings.EqualFold(filepath.Ext(filePath), ".toml") {
		if _, err := toml.Decode(string(decoded), newConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal toml. Error: %s", err)
		}
	} else {
		if err := yaml.Unmarshal(decoded, newConfig); err != nil {
			return nil, fmt.Errorf("failed to unmarshal yaml. Error: %s", err)
		}
	}

	if err := newConfig.Finalize(); err != nil {
		return nil, err
	}
	return newConfig, nil
}

// Default returns a configuration with no sources and every default set.
// Callers add sources and then call Finalize.
func Default() *Config {
	cf := blankConfig()
	cf.setDefaults()
	return cf
}

// Finalize fills in the defaults and checks the result.
func (cf *Config) Finalize() error {
	cf.setDefaults()
	if err := cf.Sources.validate(); err != nil {
		return err
	}
	return cf.Splitter.validate()
}

// AddSource appends a source. Defaults are applied by Finalize.
func (cf *Config) AddSource(src *Source) {
	cf.Sources = append(cf.Sources, src)
}

func blankConfig() *Config {
	return &Config{
		DefaultLoggerConfig: DefaultLoggerDetails{
			Config: defaultLoggingEngine,
		},
	}
}

func (cf *Config) setDefaults() {
	cf.setDefaultLoggerConfig()
	cf.setDefaultSourceNames()
	cf.setDefaultSourceLogger()
	cf.setDefaultSourceManager()
	cf.setDefaultTermTimeout()
	cf.setDefaultSplitter()
}

func (cf *Config) setDefaultLoggerConfig() {
	if len(cf.DefaultLoggerConfig.Config.Engine) == 0 {
		cf.DefaultLoggerConfig.Config.Engine = defaultLoggingEngine.Engine
	}
}

// setDefaultSourceNames names sources after what they read when no name is given.
func (cf *Config) setDefaultSourceNames() {
	for _, src := range cf.Sources {
		if src.Name != "" {
			continue
		}
		switch src.Type {
		case SourceStdin:
			src.Name = SourceStdin
		case SourceFile:
			src.Name = filepath.Base(src.Path)
		case SourceCommand:
			src.Name = filepath.Base(src.CMD)
		}
	}
}

// setDefaultSourceLogger will go through the sources and set the default logging if there is
// nothing set. The following rules will apply
// The logging engine will be the default engine
// The source logging name should the be name given to the source
//
// NOTE: setDefaultLoggerConfig should be called first
//
func (cf *Config) setDefaultSourceLogger() {
	for _, src := range cf.Sources {
		if src.LoggerConfig.SourceName == "" {
			src.LoggerConfig.SourceName = src.Name
		}
		if len(src.LoggerConfig.Engine) == 0 {
			src.LoggerConfig.Engine = cf.DefaultLoggerConfig.Config.Engine
		}
		if src.LoggerConfig.HasEngine("logfile") && src.LoggerConfig.Logfile.Filename == "" {
			src.LoggerConfig.Logfile = cf.DefaultLoggerConfig.Config.Logfile
		}
	}
}

func (cf *Config) setDefaultSourceManager() {
	if len(cf.SourceManager.LoggerConfig.Engine) == 0 {
		cf.SourceManager.LoggerConfig.Engine = defaultSourceManager.LoggerConfig.Engine
	}
	if cf.SourceManager.LoggerConfig.SourceName == "" {
		cf.SourceManager.LoggerConfig.SourceName = defaultSourceManagerName
	}

	// Set defaults for logging engines under source manager context
	if cf.SourceManager.LoggerConfig.HasEngine("syslog") {
		if cf.SourceManager.LoggerConfig.Syslog.ProgramName == "" {
			cf.SourceManager.LoggerConfig.Syslog.ProgramName = defaultSourceManagerSyslog.ProgramName
		}
	}
}

func (cf *Config) setDefaultTermTimeout() {
	for _, src := range cf.Sources {
		if src.TermTimeout <= 0 {
			src.TermTimeout = defaultTermTimeout
		}
	}
}

func (cf *Config) setDefaultSplitter() {
	if cf.Splitter.ReadSize == 0 {
		cf.Splitter.ReadSize = defaultReadSize
	}
}

func (cf Config) String() string {
	output, _ := yaml.Marshal(cf)
	return string(output)
}
