package version

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{
			name:     "clean state",
			info:     Info{GitVersion: "v1.0.0", GitTreeState: "clean"},
			expected: "v1.0.0",
		},
		{
			name:     "dirty state",
			info:     Info{GitVersion: "v1.0.0", GitTreeState: "dirty"},
			expected: "v1.0.0-dirty",
		},
		{
			name:     "empty state",
			info:     Info{GitVersion: "v1.0.0"},
			expected: "v1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.expected {
				t.Errorf("Info.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInfo_ShortString(t *testing.T) {
	info := Info{GitVersion: "v1.0.0", GitTreeState: "dirty"}

	if got := info.ShortString(); got != "v1.0.0" {
		t.Errorf("ShortString() = %v, want v1.0.0", got)
	}
}

func TestInfo_ToJSON(t *testing.T) {
	info := Get()

	s, err := info.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() err = %v", err)
	}

	var decoded Info
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if decoded.GoVersion != runtime.Version() {
		t.Errorf("goVersion = %q, want %q", decoded.GoVersion, runtime.Version())
	}
}

func TestInfo_Text(t *testing.T) {
	out := Get().Text()

	for _, want := range []string{"gitVersion:", "buildDate:", "goVersion:", "platform:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Text() missing %q:\n%s", want, out)
		}
	}
}
