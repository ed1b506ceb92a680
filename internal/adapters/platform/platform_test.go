package platform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/platform"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestPlatform_Host(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         domain.Settings
	}{
		{"linux", "amd64", domain.Settings{OS: "Linux", Arch: "x86_64"}},
		{"darwin", "arm64", domain.Settings{OS: "Macos", Arch: "armv8"}},
		{"windows", "386", domain.Settings{OS: "Windows", Arch: "x86"}},
		{"plan9", "mips", domain.Settings{OS: "plan9", Arch: "mips"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			assert.Equal(t, tt.want, platform.NewFor(tt.goos, tt.goarch).Host())
		})
	}
}

func TestPlatform_CanRun(t *testing.T) {
	p := platform.NewFor("linux", "amd64")

	assert.True(t, p.CanRun(domain.Settings{}))
	assert.True(t, p.CanRun(domain.Settings{OS: "Linux", Arch: "x86_64", BuildType: "Debug"}))
	assert.True(t, p.CanRun(domain.Settings{OS: "linux"}))
	assert.False(t, p.CanRun(domain.Settings{OS: "Windows"}))
	assert.False(t, p.CanRun(domain.Settings{OS: "Linux", Arch: "armv8"}))
}

func TestNew_MatchesItself(t *testing.T) {
	p := platform.New()
	assert.True(t, p.CanRun(p.Host()))
}
