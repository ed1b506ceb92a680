// Package platform describes the host the build runs on.
package platform

import (
	"runtime"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Platform = (*Platform)(nil)

var osNames = map[string]string{
	"linux":   "Linux",
	"darwin":  "Macos",
	"windows": "Windows",
	"freebsd": "FreeBSD",
}

var archNames = map[string]string{
	"amd64": "x86_64",
	"arm64": "armv8",
	"386":   "x86",
	"arm":   "armv7",
}

// Platform implements ports.Platform for a fixed GOOS and GOARCH.
type Platform struct {
	goos   string
	goarch string
}

// New returns the platform of the running process.
func New() *Platform {
	return &Platform{goos: runtime.GOOS, goarch: runtime.GOARCH}
}

// NewFor returns a platform for the given GOOS and GOARCH.
func NewFor(goos, goarch string) *Platform {
	return &Platform{goos: goos, goarch: goarch}
}

// Host returns the host OS and architecture in settings form.
func (p *Platform) Host() domain.Settings {
	return domain.Settings{
		OS:   lookup(osNames, p.goos),
		Arch: lookup(archNames, p.goarch),
	}
}

// CanRun reports whether target binaries run on the host. Unset target
// fields match any host.
func (p *Platform) CanRun(target domain.Settings) bool {
	host := p.Host()
	if target.OS != "" && !strings.EqualFold(target.OS, host.OS) {
		return false
	}
	if target.Arch != "" && !strings.EqualFold(target.Arch, host.Arch) {
		return false
	}
	return true
}

func lookup(names map[string]string, key string) string {
	if name, ok := names[key]; ok {
		return name
	}
	return key
}
