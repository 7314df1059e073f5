package config

const (
	defaultDataDir           = "~/.local/share/cama/data"
	defaultLogDir            = "~/.local/share/cama/logs"
	defaultSyncBatchSize     = 50
	defaultSyncFlushInterval = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Sync: Sync{
			BatchSize:     defaultSyncBatchSize,
			FlushInterval: defaultSyncFlushInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
