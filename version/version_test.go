package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetVersionInfoRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234def"

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("1.0.0 should be a release")
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected commit shortened to 7 chars, got %q", info.GitCommit)
	}
}

func TestGetShortVersionWithCommit(t *testing.T) {
	defer saveAndRestore()()
	Version = "2.0.0"
	GitCommit = "deadbee"

	if got := GetShortVersion(); !strings.HasPrefix(got, "2.0.0-deadbee") {
		t.Errorf("GetShortVersion() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "3.1.0"
	GitCommit = "cafe123"

	if got := UserAgent(""); !strings.HasPrefix(got, "llmkit/3.1.0") {
		t.Errorf("UserAgent(\"\") = %q", got)
	}
	if got := UserAgent("llm-generate"); !strings.HasPrefix(got, "llm-generate/3.1.0") {
		t.Errorf("UserAgent(product) = %q", got)
	}
}
