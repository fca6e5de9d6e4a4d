package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Get()
	if info.GoVersion != runtime.Version() {
		t.Errorf("expected go version %s, got %s", runtime.Version(), info.GoVersion)
	}
	if !strings.HasPrefix(info.Short(), Name+" ") {
		t.Errorf("unexpected short version %q", info.Short())
	}
	if !strings.Contains(info.String(), "platform: "+GetPlatform()) {
		t.Errorf("unexpected version string %q", info.String())
	}
	if !IsDevBuild() {
		t.Error("default build should report as dev build")
	}
}
