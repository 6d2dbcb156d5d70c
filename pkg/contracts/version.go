package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the release of herdbook and herdexport
	Version = "0.3.0"

	// APIVersion is the version of the HTTP and websocket contracts
	APIVersion = "v1"
)

// Set by build.go through -ldflags -X.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by /api/version
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	APIVersion   string `json:"api_version"`
}

// GetVersionInfo reports the build stamped into this binary
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		APIVersion:   APIVersion,
	}
}

// GetVersionString returns "herdbook v<version>"
func GetVersionString() string {
	return "herdbook v" + Version
}

// GetFullVersionString is the one-line build description printed by
// `herdexport --version` and logged when the server starts.
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (api %s, built %s, commit %s, %s %s/%s)",
		GetVersionString(), info.APIVersion, info.BuildTime, info.GitCommit,
		info.GoVersion, info.OS, info.Architecture)
}
