package config

const (
	defaultStagingDir          = "~/.local/share/reelpress/staging"
	defaultLogDir              = "~/.local/share/reelpress/logs"
	defaultHistoryPath         = "~/.local/share/reelpress/history.db"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultTrimCopyTimeout     = 120
	defaultTrimEncodeTimeout   = 240
	defaultTrimCRF             = 23
	defaultTrimPreset          = "veryfast"
	defaultTrimPixelFormat     = "yuv420p"
	defaultRendererBinary      = "reelpress-renderer"
	defaultRendererComposition = "CaptionedVideo"
	defaultRendererTimeout     = 120
	defaultRendererConcurrency = 1
	defaultDownloadTimeout     = 60
	defaultDownloadRetries     = 2
	defaultDownloadUserAgent   = "reelpress/dev"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Trim: Trim{
			CopyTimeout:   defaultTrimCopyTimeout,
			EncodeTimeout: defaultTrimEncodeTimeout,
			CRF:           defaultTrimCRF,
			Preset:        defaultTrimPreset,
			PixelFormat:   defaultTrimPixelFormat,
		},
		Renderer: Renderer{
			Binary:      defaultRendererBinary,
			Composition: defaultRendererComposition,
			Timeout:     defaultRendererTimeout,
			Concurrency: defaultRendererConcurrency,
		},
		Download: Download{
			TimeoutSeconds: defaultDownloadTimeout,
			RetryCount:     defaultDownloadRetries,
			UserAgent:      defaultDownloadUserAgent,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
