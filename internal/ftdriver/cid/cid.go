// Package cid implements the CID-keyed CFF font driver. A CID-keyed CFF
// font (a ROS operator in its Top DICT, FDArray/FDSelect in place of a
// single Private dict) is charstring-for-charstring identical to an
// ordinary CFF font once parsed; the only thing a CID-keyed font needs
// that a simple font doesn't is resolving a Character IDentifier to a
// glyph index through the charset table (which holds CIDs instead of
// SIDs), since CID-keyed fonts have no one-byte Encoding table of their
// own. This driver is therefore a thin wrapper over internal/ftdriver/cff,
// adding only that resolution step, grounded in
// original_source/src/cid/cidriver.c's module shape (a CID-keyed format
// driver that owns face/size/slot lifecycle but delegates charstring
// interpretation to the CFF engine it wraps) and
// original_source/src/cff/cffparse.c's charset-as-CID-table handling for
// CID-keyed Top DICTs.
package cid

import (
	"github.com/foxglyph/ftcore/internal/ftcore/driver"
	"github.com/foxglyph/ftcore/internal/ftcore/stream"
	"github.com/foxglyph/ftcore/internal/ftdriver/cff"
)

// Driver is the CID-keyed CFF format module, registered under "cid".
type Driver struct {
	cff *cff.Driver
}

func New() *Driver { return &Driver{cff: cff.New()} }

var (
	_ driver.Driver      = (*Driver)(nil)
	_ driver.CharIndexer = (*Driver)(nil)
)

// FaceInit delegates parsing to the cff driver, then declines recognition
// unless the result is actually CID-keyed: an ordinary simple CFF font is
// better served by registering the plain cff driver for it instead, since
// this driver's GetCharIndex only understands CID lookups.
func (d *Driver) FaceInit(s stream.Stream, faceIndex int) (driver.FaceData, bool, error) {
	data, recognized, err := d.cff.FaceInit(s, faceIndex)
	if err != nil || !recognized {
		return data, recognized, err
	}
	if !d.cff.IsCIDKeyed(data) {
		return driver.FaceData{}, false, nil
	}
	return data, true, nil
}

func (d *Driver) FaceDone(face driver.FaceData) { d.cff.FaceDone(face) }

func (d *Driver) SizeInit(face driver.FaceData) (driver.SizeMetrics, error) {
	return d.cff.SizeInit(face)
}

func (d *Driver) SizeDone(face driver.FaceData, m driver.SizeMetrics) { d.cff.SizeDone(face, m) }

func (d *Driver) SizeRequest(face driver.FaceData, m *driver.SizeMetrics, req driver.SizeRequest) error {
	return d.cff.SizeRequest(face, m, req)
}

func (d *Driver) SlotInit(face driver.FaceData) error { return d.cff.SlotInit(face) }
func (d *Driver) SlotDone(face driver.FaceData)       { d.cff.SlotDone(face) }

func (d *Driver) LoadGlyph(face driver.FaceData, m driver.SizeMetrics, gindex int, flags driver.LoadFlags) (driver.GlyphOutput, error) {
	return d.cff.LoadGlyph(face, m, gindex, flags)
}

// GetCharIndex resolves charCode as a CID (the convention for
// Identity-H/V-encoded CID-keyed fonts, where the wrapping sfnt's own
// cmap already maps Unicode to CID before this driver ever sees the
// value) to a glyph index via the charset table. Unmapped CIDs resolve to
// .notdef rather than erroring, matching every other driver's
// GetCharIndex contract.
func (d *Driver) GetCharIndex(face driver.FaceData, charCode uint32) (int, error) {
	gid, ok := d.cff.CIDToGID(face, int(charCode))
	if !ok {
		return 0, nil
	}
	return gid, nil
}
