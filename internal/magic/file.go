package magic

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"encoding/binary"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/vgreq/internal/errors"
	"github.com/coral-mesh/vgreq/internal/safe"
)

// ErrUnknownFormat is returned for files that are neither ELF nor Mach-O.
var ErrUnknownFormat = stderrors.New("not an ELF or Mach-O binary")

// Site is one request sequence found in a binary.
type Site struct {
	Addr    uint64 `json:"addr" yaml:"addr" header:"ADDRESS"`
	Section string `json:"section" yaml:"section" header:"SECTION"`
	Symbol  string `json:"symbol" yaml:"symbol" header:"SYMBOL"`
}

// Report lists the request sequences of one binary.
type Report struct {
	Path      string `json:"path" yaml:"path"`
	Format    string `json:"format" yaml:"format"`
	Arch      Arch   `json:"arch" yaml:"arch"`
	BuildID   string `json:"build_id,omitempty" yaml:"build_id,omitempty"`
	GoBuildID string `json:"go_build_id,omitempty" yaml:"go_build_id,omitempty"`
	Sites     []Site `json:"sites" yaml:"sites"`
}

// section is the format-independent view of an executable section.
type section struct {
	name string
	addr uint64
	data func() ([]byte, error)
}

type symbol struct {
	name string
	addr uint64
	size uint64 // zero when the format does not record sizes
}

// ScanFile opens an ELF or Mach-O executable and scans its code sections.
func ScanFile(path string, logger zerolog.Logger) (*Report, error) {
	f, err := safe.Open(path, safe.MaxBinarySize)
	if err != nil {
		return nil, fmt.Errorf("failed to open binary: %w", err)
	}
	defer errors.DeferClose(logger, f, "failed to close binary")

	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var r *Report
	switch {
	case string(magic[:]) == elf.ELFMAG:
		r, err = scanELF(f)
	case isMachO(magic):
		r, err = scanMachO(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.Path = path
	return r, nil
}

func isMachO(m [4]byte) bool {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		switch order.Uint32(m[:]) {
		case macho.Magic32, macho.Magic64:
			return true
		}
	}
	return false
}

func scanELF(r io.ReaderAt) (*Report, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var arch Arch
	switch f.Machine {
	case elf.EM_X86_64:
		arch = AMD64
	case elf.EM_386:
		arch = I386
	default:
		return nil, fmt.Errorf("unsupported machine %s", f.Machine)
	}

	var sections []section
	for _, s := range f.Sections {
		if s.Type == elf.SHT_PROGBITS && s.Flags&elf.SHF_EXECINSTR != 0 {
			sections = append(sections, section{name: s.Name, addr: s.Addr, data: s.Data})
		}
	}

	var syms []symbol
	if all, err := f.Symbols(); err == nil {
		for _, s := range all {
			if elf.ST_TYPE(s.Info) == elf.STT_FUNC {
				syms = append(syms, symbol{name: s.Name, addr: s.Value, size: s.Size})
			}
		}
	}

	rep := &Report{Format: "elf", Arch: arch}
	rep.BuildID = elfNote(f, ".note.gnu.build-id", "GNU", 3, hex.EncodeToString)
	rep.GoBuildID = elfNote(f, ".note.go.buildid", "Go", 4, func(b []byte) string { return string(b) })

	rep.Sites, err = scanSections(arch, sections, syms)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// elfNote returns the descriptor of the first note of the given name and type
// in section, formatted with format, or "" when there is none.
func elfNote(f *elf.File, name, owner string, typ uint32, format func([]byte) string) string {
	s := f.Section(name)
	if s == nil {
		return ""
	}
	data, err := s.Data()
	if err != nil {
		return ""
	}

	align := func(n uint32) uint32 { return (n + 3) &^ 3 }
	for len(data) >= 12 {
		namesz := f.ByteOrder.Uint32(data[0:])
		descsz := f.ByteOrder.Uint32(data[4:])
		ntype := f.ByteOrder.Uint32(data[8:])
		data = data[12:]

		nameEnd := align(namesz)
		descEnd := nameEnd + align(descsz)
		if uint64(descEnd) > uint64(len(data)) {
			return ""
		}
		if ntype == typ && strings.TrimRight(string(data[:namesz]), "\x00") == owner {
			return format(data[nameEnd : nameEnd+descsz])
		}
		data = data[descEnd:]
	}
	return ""
}

const (
	machoAttrPureInstructions = 0x80000000
	machoAttrSomeInstructions = 0x00000400
	machoLoadUUID             = 0x1b
)

func scanMachO(r io.ReaderAt) (*Report, error) {
	f, err := macho.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Mach-O file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var arch Arch
	switch f.Cpu {
	case macho.CpuAmd64:
		arch = AMD64
	case macho.Cpu386:
		arch = I386
	default:
		return nil, fmt.Errorf("unsupported cpu %s", f.Cpu)
	}

	var sections []section
	for _, s := range f.Sections {
		if s.Flags&(machoAttrPureInstructions|machoAttrSomeInstructions) != 0 {
			sections = append(sections, section{name: s.Seg + "," + s.Name, addr: s.Addr, data: s.Data})
		}
	}

	var syms []symbol
	if f.Symtab != nil {
		for _, s := range f.Symtab.Syms {
			if s.Sect != 0 {
				syms = append(syms, symbol{name: s.Name, addr: s.Value})
			}
		}
	}

	rep := &Report{Format: "macho", Arch: arch}
	for _, l := range f.Loads {
		raw := l.Raw()
		if len(raw) >= 24 && f.ByteOrder.Uint32(raw) == machoLoadUUID {
			rep.BuildID = hex.EncodeToString(raw[8:24])
			break
		}
	}

	rep.Sites, err = scanSections(arch, sections, syms)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func scanSections(arch Arch, sections []section, syms []symbol) ([]Site, error) {
	sort.Slice(syms, func(i, j int) bool { return syms[i].addr < syms[j].addr })

	sites := []Site{}
	for _, s := range sections {
		data, err := s.data()
		if err != nil {
			return nil, fmt.Errorf("failed to read section %s: %w", s.name, err)
		}
		offsets, err := Scan(data, arch)
		if err != nil {
			return nil, err
		}
		for _, off := range offsets {
			addr := s.addr + uint64(off)
			sites = append(sites, Site{Addr: addr, Section: s.name, Symbol: enclosing(syms, addr)})
		}
	}
	return sites, nil
}

// abiSuffixes are appended by the Go linker to assembly and ABI wrapper
// symbols.
var abiSuffixes = []string{".abi0", ".abiinternal"}

// enclosing names the symbol containing addr, without any ABI suffix.
// Without sizes the nearest symbol at or below addr wins.
func enclosing(syms []symbol, addr uint64) string {
	i := sort.Search(len(syms), func(i int) bool { return syms[i].addr > addr }) - 1
	if i < 0 {
		return ""
	}
	s := syms[i]
	if s.size != 0 && addr >= s.addr+s.size {
		return ""
	}
	name := s.name
	for _, suffix := range abiSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

// Contains reports whether code holds at least one request sequence.
func Contains(code []byte, arch Arch) bool {
	seq, err := Sequence(arch)
	return err == nil && bytes.Contains(code, seq)
}
