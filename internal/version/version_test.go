package version

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseBuildTime(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"", true},
		{"unknown", true},
		{"yesterday", true},
		{"2025-03-01T10:00:00Z", false},
		{"2025-03-01T10:00:00", false},
		{"2025-03-01 10:00:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.zero, parseBuildTime(tt.in).IsZero())
		})
	}
}

func TestStampedVersion(t *testing.T) {
	oldVersion, oldCommit, oldTime := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = oldVersion, oldCommit, oldTime })

	Version = "v1.2.0"
	GitCommit = "0123456789abcdef"
	BuildTime = "2025-03-01T10:00:00Z"

	assert.Equal(t, "v1.2.0", GetVersion())
	assert.Equal(t, "v1.2.0 (0123456)", GetShortVersion())

	info := GetBuildInfo()
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), info.BuildTime)
	assert.Contains(t, info.Platform, "/")

	detailed := GetDetailedVersion()
	assert.True(t, strings.HasPrefix(detailed, "Version: v1.2.0\nCommit: 0123456789abcdef\nBuilt: "))
	assert.Contains(t, detailed, "Go: ")
}
