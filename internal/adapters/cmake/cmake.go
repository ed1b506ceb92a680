// Package cmake drives CMake and CTest through the lifecycle phases.
package cmake

import (
	"bytes"
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// ToolchainFilename is the name of the generated toolchain file in the build directory.
const ToolchainFilename = "kiln_toolchain.cmake"

// PrefixPathVar is the toolchain variable listing package search prefixes.
const PrefixPathVar = "CMAKE_PREFIX_PATH"

var _ ports.BuildSystem = (*CMake)(nil)

// CMake implements ports.BuildSystem by invoking cmake and ctest.
type CMake struct {
	exec      ports.Executor
	generator string
}

// New creates a new CMake build system running commands through exec.
func New(exec ports.Executor) *CMake {
	return &CMake{exec: exec}
}

// Generator selects the CMake generator passed with -G.
func (c *CMake) Generator(name string) *CMake {
	c.generator = name
	return c
}

// Generate writes the toolchain file and configures the build directory.
func (c *CMake) Generate(ctx context.Context, snapshot *domain.Snapshot) error {
	layout, err := snapshot.Layout().Absolute()
	if err != nil {
		return err
	}
	buildDir := layout.BuildDir
	if err := os.MkdirAll(buildDir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create build directory"), "dir", buildDir)
	}

	vars := snapshot.Variables()
	toolchain := filepath.Join(buildDir, ToolchainFilename)
	//nolint:gosec // toolchain file is read by cmake
	if err := os.WriteFile(toolchain, RenderToolchain(vars), 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write toolchain file"), "path", toolchain)
	}

	args := []string{"cmake", "-S", layout.SourceDir, "-B", buildDir}
	if c.generator != "" {
		args = append(args, "-G", c.generator)
	}
	args = append(args, "-DCMAKE_TOOLCHAIN_FILE="+toolchain)
	if layout.PackageDir != "" {
		args = append(args, "-DCMAKE_INSTALL_PREFIX="+layout.PackageDir)
	}

	cmd := domain.NewCommand(buildDir, args...)
	if prefix := vars[PrefixPathVar]; prefix != "" {
		cmd = cmd.WithEnv(PrefixPathVar, prefix)
	}
	return c.run(ctx, cmd, "configure")
}

// Build compiles the configured build directory.
func (c *CMake) Build(ctx context.Context, snapshot *domain.Snapshot) error {
	layout, err := snapshot.Layout().Absolute()
	if err != nil {
		return err
	}
	buildDir := layout.BuildDir
	args := []string{"cmake", "--build", buildDir}
	if bt := snapshot.Settings().BuildType; bt != "" {
		args = append(args, "--config", bt)
	}
	return c.run(ctx, domain.NewCommand(buildDir, args...), "build")
}

// Package installs the build into the package directory.
func (c *CMake) Package(ctx context.Context, snapshot *domain.Snapshot) error {
	layout, err := snapshot.Layout().Absolute()
	if err != nil {
		return err
	}
	buildDir := layout.BuildDir
	args := []string{"cmake", "--install", buildDir}
	if bt := snapshot.Settings().BuildType; bt != "" {
		args = append(args, "--config", bt)
	}
	if layout.PackageDir != "" {
		args = append(args, "--prefix", layout.PackageDir)
	}
	return c.run(ctx, domain.NewCommand(buildDir, args...), "install")
}

// Test runs the registered CTest tests.
func (c *CMake) Test(ctx context.Context, snapshot *domain.Snapshot) error {
	layout, err := snapshot.Layout().Absolute()
	if err != nil {
		return err
	}
	buildDir := layout.BuildDir
	args := []string{"ctest", "--test-dir", buildDir, "--output-on-failure"}
	if bt := snapshot.Settings().BuildType; bt != "" {
		args = append(args, "-C", bt)
	}
	return c.run(ctx, domain.NewCommand(buildDir, args...), "test")
}

func (c *CMake) run(ctx context.Context, cmd domain.Command, step string) error {
	if err := c.exec.Execute(ctx, cmd); err != nil {
		return zerr.With(zerr.Wrap(err, "cmake "+step+" failed"), "dir", cmd.Dir)
	}
	return nil
}

// RenderToolchain renders toolchain variables as cache entries in sorted
// order, so equal variables give byte-identical files.
func RenderToolchain(vars map[string]string) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Generated by kiln. Do not edit.\n")
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		buf.WriteString("set(")
		buf.WriteString(k)
		buf.WriteString(` "`)
		buf.WriteString(escape(vars[k]))
		buf.WriteString(`" CACHE STRING "" FORCE)`)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`)

func escape(v string) string {
	return escaper.Replace(v)
}
