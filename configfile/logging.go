package configfile

import "github.com/c2h5oh/datasize"

// LoggingConfig is a struct that will hold the values of the logging
// configuration of a source or the source manager itself.
// Every engine listed gets a copy of each line.
type LoggingConfig struct {
	Engine     []string   `yaml:"engine,omitempty" toml:"engine"`
	SourceName string     `yaml:"source_name,omitempty" toml:"source_name"`
	Syslog     Syslog     `yaml:"syslog,omitempty" toml:"syslog"`
	Logfile    FileLogger `yaml:"file_logger,omitempty" toml:"file_logger"`
}

// DefaultLoggerDetails will hold the default logger configuration
type DefaultLoggerDetails struct {
	Config LoggingConfig `yaml:"logging_config,omitempty" toml:"logging_config"`
}

// Syslog is used to send configuration to the syslog logger
type Syslog struct {
	ProgramName                string `yaml:"program_name" toml:"program_name"`
	Address                    string `yaml:"address" toml:"address"`
	ConnectionType             string `yaml:"protocol,omitempty" toml:"protocol"`
	CertificateBundlePath      string `yaml:"cert_bundle_path,omitempty" toml:"cert_bundle_path"`
	ExtractLogLevel            bool   `yaml:"extract_log_level,omitempty" toml:"extract_log_level"`
	OverrideHostname           string `yaml:"override_hostname,omitempty" toml:"override_hostname"`
	AddContainerNameToTag      bool   `yaml:"append_container_name_to_tag,omitempty" toml:"append_container_name_to_tag"`
	AddContainerNameToHostname bool   `yaml:"append_container_name_to_hostname,omitempty" toml:"append_container_name_to_hostname"`
}

// FileLogger is a logger that will write to files.
// SizeLimit takes human sizes such as "100MB".
type FileLogger struct {
	Filename        string            `yaml:"filepath" toml:"filepath"`
	SizeLimit       datasize.ByteSize `yaml:"size_limit" toml:"size_limit"`
	HistoricalFiles int               `yaml:"historical_files_limit" toml:"historical_files_limit"`
}

// HasEngine reports if name is one of the configured engines.
func (lc LoggingConfig) HasEngine(name string) bool {
	for _, engine := range lc.Engine {
		if engine == name {
			return true
		}
	}
	return false
}
