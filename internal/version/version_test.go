package version

import "testing"

func TestString(t *testing.T) {
	v, c, b := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })

	Version, GitCommit = "v1.0.0", "unknown"
	if got := String(); got != "docnav v1.0.0" {
		t.Errorf("String() = %q", got)
	}

	GitCommit, BuildTime = "0123456789abcdef", "2024-05-01"
	if got := String(); got != "docnav v1.0.0 (0123456789ab, built 2024-05-01)" {
		t.Errorf("String() = %q", got)
	}
}

func TestBuildInfo(t *testing.T) {
	if BuildTime == "" {
		t.Error("BuildTime should be initialized")
	}
	if GitCommit == "" {
		t.Error("GitCommit should be initialized")
	}
}
