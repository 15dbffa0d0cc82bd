package configfile

// SourceManager hold configuration for the source manager itself
type SourceManager struct {
	LoggerConfig LoggingConfig  `yaml:"logging_config" toml:"logging_config"`
	DebugLogging bool           `yaml:"debug_logging,omitempty" toml:"debug_logging"`
	DebugOptions SMDebugOptions `yaml:"debug_options,omitempty" toml:"debug_options"`
}

// SMDebugOptions holds configuration for debugging
type SMDebugOptions struct {
	PrintGeneratedConfig bool `yaml:"show_generated_config" toml:"show_generated_config"`
	PrintEndReport       bool `yaml:"show_end_report" toml:"show_end_report"`
}
