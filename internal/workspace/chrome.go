package workspace

import (
	"encoding/binary"
	"errors"
)

// Geometry is the window size persisted in the geometry blob.
type Geometry struct {
	Width  int
	Height int
}

// Splitter is the sidebar layout persisted in the splitter_state blob.
type Splitter struct {
	SidebarWidth   int
	SidebarVisible bool
}

var errShortBlob = errors.New("blob too short")

// EncodeGeometry packs g as two big-endian uint16 values.
func EncodeGeometry(g Geometry) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b[0:], uint16(clampU16(g.Width)))
	binary.BigEndian.PutUint16(b[2:], uint16(clampU16(g.Height)))
	return b
}

// DecodeGeometry unpacks a geometry blob.
func DecodeGeometry(b []byte) (Geometry, error) {
	if len(b) < 4 {
		return Geometry{}, errShortBlob
	}
	return Geometry{
		Width:  int(binary.BigEndian.Uint16(b[0:])),
		Height: int(binary.BigEndian.Uint16(b[2:])),
	}, nil
}

// EncodeSplitter packs s as a uint16 width and a visibility byte.
func EncodeSplitter(s Splitter) []byte {
	b := make([]byte, 3)
	binary.BigEndian.PutUint16(b[0:], uint16(clampU16(s.SidebarWidth)))
	if s.SidebarVisible {
		b[2] = 1
	}
	return b
}

// DecodeSplitter unpacks a splitter blob.
func DecodeSplitter(b []byte) (Splitter, error) {
	if len(b) < 3 {
		return Splitter{}, errShortBlob
	}
	return Splitter{
		SidebarWidth:   int(binary.BigEndian.Uint16(b[0:])),
		SidebarVisible: b[2] == 1,
	}, nil
}

func clampU16(n int) int {
	return max(0, min(n, 0xFFFF))
}
