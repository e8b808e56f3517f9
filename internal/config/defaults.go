package config

const (
	defaultLogDir          = "~/.local/share/tidy/logs"
	defaultTargetDirectory = "~/Downloads"
	defaultCategoryName    = "Others"
	defaultSettleSeconds   = 1
	defaultArchiveDays     = 5
	defaultArchiveInterval = 24
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults. The category
// rules mirror the extension groups most hosts accumulate in a download
// directory; any of them can be replaced wholesale in the config file.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Watch: Watch{
			TargetDirectories: []string{defaultTargetDirectory},
			SettleSeconds:     defaultSettleSeconds,
		},
		Archive: Archive{
			Enabled:       false,
			Days:          defaultArchiveDays,
			IntervalHours: defaultArchiveInterval,
		},
		Categories: Categories{
			Default: defaultCategoryName,
			Rules: map[string][]string{
				"Documents": {"pdf", "doc", "docx", "txt", "rtf", "odt", "csv", "xls", "xlsx", "ppt", "pptx"},
				"Images":    {"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp", "svg", "heic"},
				"Videos":    {"mp4", "mov", "avi", "mkv", "webm", "m4v"},
				"Audio":     {"mp3", "wav", "flac", "ogg", "m4a", "aac"},
				"Archives":  {"zip", "rar", "7z", "tar", "gz", "bz2", "xz"},
				"Programs":  {"exe", "msi", "dmg", "deb", "rpm", "appimage", "pkg"},
			},
		},
		Workflow: Workflow{
			QueuePollInterval:  5,
			ErrorRetryInterval: 10,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
