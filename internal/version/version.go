package version

import (
	"fmt"

	"github.com/aatumaykin/nexrecipes/internal/constants"
)

var (
	Version   = constants.DefaultVersion
	BuildTime = constants.DefaultBuildTime
	GitCommit = constants.DefaultGitCommit
	GoVersion = constants.DefaultGoVersion
)

func SetInfo(v, bt, gc, gv string) {
	if v != "" {
		Version = v
	}
	if bt != "" {
		BuildTime = bt
	}
	if gc != "" {
		GitCommit = gc
	}
	if gv != "" {
		GoVersion = gv
	}
}

// Format returns the multi-line output of the version command.
func Format() string {
	return fmt.Sprintf("%s - recipe scaffolding and cron reconciliation\nVersion: %s\nBuild Time: %s\nGit Commit: %s\nGo Version: %s\n",
		constants.AppName, Version, BuildTime, GitCommit, GoVersion)
}

// UserAgent is sent with every gateway request.
func UserAgent() string {
	return constants.AppName + "/" + Version
}
