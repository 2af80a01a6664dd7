// Package config provides configuration management for purge.
package config

// Default configuration values for purge.
const (
	// DefaultRetentionDays is how old a file must be, in days, to qualify.
	DefaultRetentionDays = 7

	// DefaultManifestRetentionDays is how long run manifests are kept.
	DefaultManifestRetentionDays = 90

	// CategoryAll names the synthesized union of every other category.
	CategoryAll = "all"

	// EnvPrefix prefixes environment overrides, e.g. PURGE_DRY_RUN.
	EnvPrefix = "PURGE"

	// AppName is used for XDG directory names.
	AppName = "purge"
)

// Directories and files kept under the program data directory.
const (
	QuarantineDirName = "Quarantine"
	LogsDirName       = "Logs"
	ManifestDirName   = "Manifest"
	IndexDirName      = "Index"
	LockFileName      = "purge.lock"
)

// Configuration keys. Lookup is case-insensitive, so PROGRAM_DATA_DIR in a
// JSON file maps to KeyProgramDataDir.
const (
	KeyProgramDataDir  = "program_data_dir"
	KeyExcludeDirs     = "exclude_dirs"
	KeyExcludePatterns = "exclude_patterns"
	KeyFileCategories  = "file_categories"
	KeyRetentionDays   = "retention_days"
	KeyDryRun          = "dry_run"
	KeyAutoDelete      = "auto_delete"
	KeyVolumes         = "volumes"
	KeyCategories      = "categories"
	KeyIndexEnabled    = "index.enabled"
	KeyManifestEnabled = "manifest.enabled"
	KeyManifestDays    = "manifest.retention_days"

	// aliasAutoDelete is the spelling used by older config.json files.
	aliasAutoDelete = "autodelete"
)

// RequiredKeys must be present in the configuration.
var RequiredKeys = []string{KeyProgramDataDir, KeyExcludeDirs, KeyFileCategories}

// DefaultCategories is written by `purge config init`.
var DefaultCategories = map[string][]string{
	"documents": {".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".pdf", ".csv", ".rtf"},
	"videos":    {".mp4", ".avi", ".mov", ".mkv", ".wmv", ".m4v", ".3gp", ".flv", ".webm"},
	"images":    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"},
	"archives":  {".zip", ".rar", ".7z", ".tar", ".gz"},
}

// DefaultLogComponents are the per-component levels written by default.
var DefaultLogComponents = map[string]string{
	"scanner":  "info",
	"config":   "info",
	"index":    "warn",
	"manifest": "info",
}
