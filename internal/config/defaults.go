package config

const (
	defaultRootDir          = "~/shop"
	defaultLogDir           = "~/.local/share/steward/logs"
	defaultDataDir          = "~/.local/share/steward"
	defaultAPIBind          = "127.0.0.1:8687"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
	defaultDebounceSeconds  = 2
	defaultTokenTTLMinutes  = 480
	defaultNotifyTimeout    = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RootDir: defaultRootDir,
			LogDir:  defaultLogDir,
			DataDir: defaultDataDir,
			APIBind: defaultAPIBind,
		},
		Organize: Organize{
			Recursive: true,
		},
		Monitor: Monitor{
			Enabled:         true,
			DebounceSeconds: defaultDebounceSeconds,
		},
		Server: Server{
			Enabled:         true,
			TokenTTLMinutes: defaultTokenTTLMinutes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Organization:   true,
			Violations:     true,
			Errors:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
