// Package compileinfo reports how the running binary was built.
package compileinfo

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

type BuildInfo struct {
	Module     string `json:"module"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Modified   bool   `json:"modified"`
}

func (b BuildInfo) String() string {
	mod := ""
	if b.Modified {
		mod = " Files in the repo were modified after that commit."
	}

	return fmt.Sprintf("%s %s built with %s at commit %v at time %v.%s", b.Module, b.Version, b.GoVersion, b.Commit, b.CommitTime, mod)
}

// Get reads the build metadata embedded by the Go toolchain. Fields are empty
// when the binary carries none, as under go test.
func Get() BuildInfo {
	out := BuildInfo{}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = z.GoVersion
	out.Module = z.Main.Path
	out.Version = z.Main.Version
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

// Fields renders b as structured log fields.
func (b BuildInfo) Fields() []zap.Field {
	return []zap.Field{
		zap.String("module", b.Module),
		zap.String("version", b.Version),
		zap.String("go_version", b.GoVersion),
		zap.String("commit", b.Commit),
		zap.String("commit_time", b.CommitTime),
		zap.Bool("modified", b.Modified),
	}
}
