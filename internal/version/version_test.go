package version

import (
	"strings"
	"testing"
)

// setBuild overrides the build variables for the duration of a test.
func setBuild(t *testing.T, v, commit, built string) {
	t.Helper()
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version = origVersion
		Commit = origCommit
		BuildTime = origBuildTime
	})
	Version, Commit, BuildTime = v, commit, built
}

func TestString(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		setBuild(t, "dev", "unknown", "unknown")

		result := String()

		if !strings.Contains(result, "dev") {
			t.Errorf("String() = %q, should contain 'dev'", result)
		}
		if !strings.Contains(result, "built") {
			t.Errorf("String() = %q, should contain 'built'", result)
		}
	})

	t.Run("custom values", func(t *testing.T) {
		setBuild(t, "1.2.3", "abc1234", "2024-01-15T10:00:00Z")

		expected := "1.2.3 (abc1234) built 2024-01-15T10:00:00Z"
		if result := String(); result != expected {
			t.Errorf("String() = %q, want %q", result, expected)
		}
	})
}

func TestUserAgent(t *testing.T) {
	setBuild(t, "1.2.3", "abc1234", "now")

	if got := UserAgent(); got != "binance-collector/1.2.3" {
		t.Errorf("UserAgent() = %q, want %q", got, "binance-collector/1.2.3")
	}
}

func TestLogAttrs(t *testing.T) {
	setBuild(t, "1.2.3", "abc1234", "2024-01-15T10:00:00Z")

	attrs := LogAttrs()
	if len(attrs)%2 != 0 {
		t.Fatalf("LogAttrs() has odd length %d", len(attrs))
	}
	got := make(map[string]any)
	for i := 0; i < len(attrs); i += 2 {
		got[attrs[i].(string)] = attrs[i+1]
	}
	if got["version"] != "1.2.3" || got["commit"] != "abc1234" {
		t.Errorf("LogAttrs() = %v", got)
	}
}

func TestDefaultValues(t *testing.T) {
	// ldflags may override these in production builds.
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
}
