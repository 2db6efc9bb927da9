// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 12

// Recitation API - these keys govern the endpoints used to retrieve chapters and audio metadata.
const (
	APIBaseURL     = "api.base_url"
	APIDownloadURL = "api.download_url"
	APILanguage    = "api.language"
)

// Media Playback - these keys maintain the configuration for the external playback engine.
const (
	PlayerEngine       = "player.engine"
	PlayerResumePrompt = "player.resume_prompt"
)

// Chapter Search - these keys define the parameters for chapter discovery.
const (
	SearchLimit = "search.limit"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Persisted audio-player state identifiers.
// These are not viper keys: they address entries of the storage package's
// shared key-value map, each read with a typed default.
const (
	StoreAutoScroll      = "AUDIO_PLAYER:AUTO_SCROLL"
	StoreShowTooltip     = "AUDIO_PLAYER:SHOW_TOOLTIP"
	StoreRepeat          = "AUDIO_PLAYER:REPEAT"
	StoreReciterID       = "AUDIO_PLAYER:RECITER_ID"
	StoreSpeed           = "AUDIO_PLAYER:SPEED"
	StorePlayingHistory  = "AUDIO_PLAYER:PLAYING_HISTORY"
	StorePlaybackHistory = "AUDIO_PLAYER:PLAYBACK_HISTORY"
)
