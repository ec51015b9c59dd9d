// Package settings provides build metadata, per-run options and context
// helpers shared by the kvb commands.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "kvb"

// EnvConfig overrides the config file location.
const EnvConfig = "KVB_CONFIG"

// DefaultLogFile receives debug logs when --debug is given without --log-file.
const DefaultLogFile = "kvb.log"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the options of a single invocation that are not part of the
// config file.
type Run struct {
	MinLogLevel int8
	Debug       bool
	LogFile     string
	ConfigPath  string
	NoColor     bool
}

// NewCliParams returns the defaults for a CLI run: info logging to stderr,
// colors on, config from the default location.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		Debug:       false,
		LogFile:     "",
		ConfigPath:  "",
		NoColor:     false,
	}
}

// EffectiveLogFile is where logs go for this run; empty means stderr.
func (r *Run) EffectiveLogFile() string {
	if r.LogFile != "" {
		return r.LogFile
	}
	if r.Debug {
		return DefaultLogFile
	}
	return ""
}
