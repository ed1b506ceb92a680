package domain

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cespare/xxhash/v2"
)

func fingerprintSnapshot(s *Snapshot) string {
	h := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = h.WriteString(p)
			_, _ = h.Write([]byte{0})
		}
	}

	write(s.metadata.Name, s.metadata.Version)
	write(s.settings.OS, s.settings.Arch, s.settings.BuildType, s.settings.Compiler)
	writeSorted(write, s.options)
	writeSorted(write, s.variables)
	for _, d := range s.dependencies {
		write(d.Name, d.Constraint.String(), string(d.Kind))
		writeSorted(write, d.Options)
	}

	return fmt.Sprintf("%016x", h.Sum64())
}

func writeSorted(write func(...string), m map[string]string) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		write(k, m[k])
	}
	write("")
}
