// Package machox opens Mach-O binaries, selects a slice of universal files,
// and loads segments, sections, procedures and selector references into a
// document.Memory for the analysis passes.
package machox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"

	"unalias/internal/disasm"
)

// Image is an opened Mach-O slice.
type Image struct {
	Path string
	Arch string // slice name, e.g. "arm64e"
	File *macho.File

	fat *macho.FatFile
}

// Open opens path. For universal binaries arch selects the slice by name;
// when empty the first arm64 slice is used.
func Open(path, arch string) (*Image, error) {
	fat, err := macho.OpenFat(path)
	if err != nil {
		if !errors.Is(err, macho.ErrNotFat) {
			return nil, fmt.Errorf("open macho: %w", err)
		}
		m, err := macho.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open macho: %w", err)
		}
		name := m.SubCPU.String(m.CPU)
		if arch != "" && !strings.EqualFold(arch, name) {
			if cerr := m.Close(); cerr != nil {
				return nil, fmt.Errorf("close macho: %w", cerr)
			}
			return nil, fmt.Errorf("%s is a thin %s binary, not %s", path, name, arch)
		}
		return &Image{Path: path, Arch: name, File: m}, nil
	}

	var names []string
	for _, fa := range fat.Arches {
		name := fa.SubCPU.String(fa.CPU)
		names = append(names, name)
		if arch != "" && strings.EqualFold(arch, name) {
			return &Image{Path: path, Arch: name, File: fa.File, fat: fat}, nil
		}
	}
	if arch == "" {
		for _, fa := range fat.Arches {
			if fa.CPU == types.CPUArm64 {
				return &Image{Path: path, Arch: fa.SubCPU.String(fa.CPU), File: fa.File, fat: fat}, nil
			}
		}
	}
	if err := fat.Close(); err != nil {
		return nil, fmt.Errorf("close macho: %w", err)
	}
	if arch == "" {
		return nil, fmt.Errorf("no arm64 slice in universal binary (have %s)", strings.Join(names, ", "))
	}
	return nil, fmt.Errorf("no %s slice in universal binary (have %s)", arch, strings.Join(names, ", "))
}

// Close closes the underlying file.
func (im *Image) Close() error {
	if im.fat != nil {
		err := im.fat.Close()
		im.fat, im.File = nil, nil
		return err
	}
	if im.File != nil {
		err := im.File.Close()
		im.File = nil
		return err
	}
	return nil
}

// InstructionSet returns the instruction set of the selected slice.
func (im *Image) InstructionSet() disasm.Arch {
	return archOf(im.File.CPU)
}

func archOf(cpu types.CPU) disasm.Arch {
	switch cpu {
	case types.CPUArm64:
		return disasm.ArchAArch64
	case types.CPUAmd64:
		return disasm.ArchX86_64
	}
	return disasm.ArchUnknown
}
