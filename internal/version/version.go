// Package version reports the build version of env-diff and checks GitHub
// for newer releases.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/tcnksm/go-latest"
)

const (
	defaultModule = "github.com/alchemmist/env-diff"
	repoOwner     = "alchemmist"
	repoName      = "env-diff"
	unknown       = "v0.0.0-unknown"
)

// buildVersion is set via -ldflags "-X github.com/alchemmist/env-diff/internal/version.buildVersion=...".
var buildVersion = ""

var check = latest.Check

// Current returns the best available version string.
func Current() string {
	if v := strings.TrimSpace(buildVersion); v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return unknown
	}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != "(devel)" {
		return v
	}
	if v := pseudoVersion(info); v != "" {
		return v
	}
	return unknown
}

func Module() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			return path
		}
	}
	return defaultModule
}

func pseudoVersion(info *debug.BuildInfo) string {
	if info == nil {
		return ""
	}
	var revision, vcsTime string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			vcsTime = setting.Value
		}
	}
	if revision == "" || vcsTime == "" {
		return ""
	}
	parsed, err := time.Parse(time.RFC3339, vcsTime)
	if err != nil {
		return ""
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	return "v0.0.0-" + parsed.UTC().Format("20060102150405") + "-" + revision
}

// Release is the outcome of a latest release check.
type Release struct {
	Current  string
	Latest   string
	Outdated bool
}

// CheckLatest compares current against the newest tag of the GitHub
// repository.
func CheckLatest(current string) (Release, error) {
	res, err := check(&latest.GithubTag{
		Owner:      repoOwner,
		Repository: repoName,
	}, strings.TrimPrefix(current, "v"))
	if err != nil {
		return Release{}, fmt.Errorf("check latest release: %w", err)
	}
	return Release{Current: current, Latest: res.Current, Outdated: res.Outdated}, nil
}
