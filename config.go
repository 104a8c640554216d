package editor

import "github.com/oriolmontcreus/capsulo-sub000/internal/runtimeconfig"

var (
	ErrDefaultLocaleRequired  = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleUnlisted  = runtimeconfig.ErrDefaultLocaleUnlisted
	ErrLocaleDuplicated       = runtimeconfig.ErrLocaleDuplicated
	ErrStorageDriverUnknown   = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired     = runtimeconfig.ErrStorageDSNRequired
	ErrAutosaveQuietInvalid   = runtimeconfig.ErrAutosaveQuietInvalid
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	I18NConfig     = runtimeconfig.I18NConfig
	AutosaveConfig = runtimeconfig.AutosaveConfig
	StorageConfig  = runtimeconfig.StorageConfig
	RemoteConfig   = runtimeconfig.RemoteConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
