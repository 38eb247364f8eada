package config

const (
	defaultBind           = "0.0.0.0"
	defaultPort           = 8012
	defaultRequestTimeout = 30
	defaultTemplatesDir   = "templates"
	defaultOCRLanguage    = "eng"
	defaultAPIURL         = "http://localhost:4000"
	defaultWebhookPath    = "/api/webhooks/game-detected"
	defaultNotifyTimeout  = 5
	defaultDataDir        = "~/.local/share/gamesight"
	defaultHistoryLimit   = 1000
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with the service defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:           defaultBind,
			Port:           defaultPort,
			RequestTimeout: defaultRequestTimeout,
		},
		Detector: Detector{
			TemplatesDir: defaultTemplatesDir,
			OCRLanguage:  defaultOCRLanguage,
			OCREnabled:   true,
		},
		Notify: Notify{
			Enabled:        true,
			APIURL:         defaultAPIURL,
			WebhookPath:    defaultWebhookPath,
			TimeoutSeconds: defaultNotifyTimeout,
		},
		Store: Store{
			DataDir:      defaultDataDir,
			HistoryLimit: defaultHistoryLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
