package config

const (
	defaultLogDir               = "~/.local/share/logmon/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 30
	defaultArchiveRetentionDays = 14
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Archive: Archive{
			Enabled:       false,
			RetentionDays: defaultArchiveRetentionDays,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
