// Package module implements the dynamic registry of pluggable font-format
// drivers, renderers, hinters, and auxiliary modules, grounded in the
// teacher's internal/platform.BackendFactory registry-and-probe pattern
// (internal/platform/backend.go): an ordered list, a String() stringer per
// tag, and a pluggable factory the caller can override.
package module

import (
	"fmt"

	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
)

// Kind classifies what a registered module provides.
type Kind int

const (
	KindFontDriver Kind = iota
	KindRenderer
	KindHinter
	KindAuxiliary
)

func (k Kind) String() string {
	switch k {
	case KindFontDriver:
		return "font-driver"
	case KindRenderer:
		return "renderer"
	case KindHinter:
		return "hinter"
	case KindAuxiliary:
		return "auxiliary"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// MaxDrivers bounds the font-driver list (FT_MAX_DRIVERS in the original),
// set to 4 to match the four format families spec.md §6 recognizes.
const MaxDrivers = 4

// Info is the record every module publishes regardless of kind: kind flags,
// name, version, and minimum required library version.
type Info struct {
	Kind           Kind
	Name           string
	Version        int
	RequiredLibVer int
}

// Registry holds font-driver, renderer, hinter, and auxiliary modules.
// Font drivers are capped at MaxDrivers and probed in registration order by
// Face construction; renderers are looked up by the name they were
// registered under (RendererByFormat).
type Registry struct {
	drivers   []Entry
	renderers []Entry
	hinters   []Entry
	aux       []Entry
}

// Entry pairs a module's Info with its type-erased interface value; callers
// downcast through the capability interface they expect (driver.Driver,
// loader.Renderer, ...).
type Entry struct {
	Info      Info
	Interface any
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterDriver adds a font-driver module. Registering a duplicate name or
// exceeding MaxDrivers fails per spec.md §4.1.
func (r *Registry) RegisterDriver(info Info, iface any) error {
	if info.Kind != KindFontDriver {
		return ferrors.Newf("module", ferrors.CodeInvalidArgument, "RegisterDriver: kind %s is not a font driver", info.Kind)
	}
	if len(r.drivers) >= MaxDrivers {
		return ferrors.New("module", ferrors.CodeTooManyDrivers)
	}
	for _, d := range r.drivers {
		if d.Info.Name == info.Name {
			return ferrors.Newf("module", ferrors.CodeInvalidArgument, "duplicate driver name %q", info.Name)
		}
	}
	r.drivers = append(r.drivers, Entry{Info: info, Interface: iface})
	return nil
}

// RegisterRenderer adds a renderer module to the parallel renderer list.
func (r *Registry) RegisterRenderer(info Info, iface any) error {
	if info.Kind != KindRenderer {
		return ferrors.Newf("module", ferrors.CodeInvalidArgument, "RegisterRenderer: kind %s is not a renderer", info.Kind)
	}
	for _, rr := range r.renderers {
		if rr.Info.Name == info.Name {
			return ferrors.Newf("module", ferrors.CodeInvalidArgument, "duplicate renderer name %q", info.Name)
		}
	}
	r.renderers = append(r.renderers, Entry{Info: info, Interface: iface})
	return nil
}

// RegisterHinter adds a hinter module (the auto-hinter, or a driver's own
// PS-hint executor exposed as a standalone module).
func (r *Registry) RegisterHinter(info Info, iface any) error {
	if info.Kind != KindHinter {
		return ferrors.Newf("module", ferrors.CodeInvalidArgument, "RegisterHinter: kind %s is not a hinter", info.Kind)
	}
	r.hinters = append(r.hinters, Entry{Info: info, Interface: iface})
	return nil
}

// RegisterAuxiliary adds a module that is neither a driver, renderer, nor
// hinter (e.g. a metrics attachment reader).
func (r *Registry) RegisterAuxiliary(info Info, iface any) error {
	if info.Kind != KindAuxiliary {
		return ferrors.Newf("module", ferrors.CodeInvalidArgument, "RegisterAuxiliary: kind %s is not auxiliary", info.Kind)
	}
	r.aux = append(r.aux, Entry{Info: info, Interface: iface})
	return nil
}

// Drivers returns the registered font drivers in registration order, the
// order OpenFace probes them in.
func (r *Registry) Drivers() []Entry { return append([]Entry(nil), r.drivers...) }

// Renderers returns the registered renderers.
func (r *Registry) Renderers() []Entry { return append([]Entry(nil), r.renderers...) }

// DriverByName performs the reverse lookup spec.md §4.1 requires ("a driver
// is identified by name").
func (r *Registry) DriverByName(name string) (Entry, bool) {
	for _, d := range r.drivers {
		if d.Info.Name == name {
			return d, true
		}
	}
	return Entry{}, false
}

// RendererByFormat returns the first renderer registered for glyphFormat,
// the selection spec.md §4.3 describes ("glyph_format and render-mode").
func (r *Registry) RendererByFormat(glyphFormat string) (Entry, bool) {
	for _, rr := range r.renderers {
		if rr.Info.Name == glyphFormat {
			return rr, true
		}
	}
	return Entry{}, false
}
