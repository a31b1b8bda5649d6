package config

const (
	defaultUploadDir          = "~/.local/share/clipforge/uploads"
	defaultOutputDir          = "~/.local/share/clipforge/outputs"
	defaultStagingDir         = "~/.local/share/clipforge/staging"
	defaultLogDir             = "~/.local/share/clipforge/logs"
	defaultOpenAIBaseURL      = "https://api.openai.com/v1"
	defaultChatModel          = "gpt-4"
	defaultWhisperModel       = "whisper-1"
	defaultOpenAITimeout      = 120
	defaultCategoryID         = "22" // People & Blogs
	defaultPrivacyStatus      = "public"
	defaultMaxClipSeconds     = 60.0
	defaultTopClips           = 10
	defaultWorkerPollInterval = 60
	defaultWorkerPlatform     = "youtube"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir:  defaultUploadDir,
			OutputDir:  defaultOutputDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			ChatModel:      defaultChatModel,
			WhisperModel:   defaultWhisperModel,
			TimeoutSeconds: defaultOpenAITimeout,
		},
		YouTube: YouTube{
			CategoryID:    defaultCategoryID,
			PrivacyStatus: defaultPrivacyStatus,
		},
		Detection: Detection{
			MaxClipSeconds: defaultMaxClipSeconds,
			TopClips:       defaultTopClips,
		},
		Worker: Worker{
			PollIntervalSeconds: defaultWorkerPollInterval,
			Platform:            defaultWorkerPlatform,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
