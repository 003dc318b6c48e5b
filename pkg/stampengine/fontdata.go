package stampengine

import (
	"bytes"
	"encoding/binary"
	"os"
	"strings"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// embeddedFonts mirrors font_data.go's embeddedFonts map: the system
// fallback faces that ship with the engine so a request never has zero
// usable fonts.
var embeddedFonts = map[string][]byte{
	"sans-serif-regular":    goregular.TTF,
	"sans-serif-bold":       gobold.TTF,
	"sans-serif-italic":     goitalic.TTF,
	"sans-serif-bolditalic": gobolditalic.TTF,
}

const defaultSystemFamily = "sans-serif"

var (
	faceCacheMu sync.RWMutex
	faceCache   = make(map[string]font.Face)
	dataCache   = make(map[string][]byte)
)

// loadFontFromFile parses and caches a font file from disk.
func loadFontFromFile(path string) (font.Face, []byte, error) {
	faceCacheMu.RLock()
	if f, ok := faceCache[path]; ok {
		d := dataCache[path]
		faceCacheMu.RUnlock()
		return f, d, nil
	}
	faceCacheMu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, newError(ErrFaceLoadFailed, "read font file: "+err.Error())
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, nil, newError(ErrFaceLoadFailed, "parse font file: "+err.Error())
	}

	faceCacheMu.Lock()
	faceCache[path] = face
	dataCache[path] = data
	faceCacheMu.Unlock()
	return face, data, nil
}

// loadEmbeddedFont parses and caches one of the embedded system fonts.
func loadEmbeddedFont(key string) (font.Face, []byte, error) {
	faceCacheMu.RLock()
	if f, ok := faceCache[key]; ok {
		d := dataCache[key]
		faceCacheMu.RUnlock()
		return f, d, nil
	}
	faceCacheMu.RUnlock()

	data, ok := embeddedFonts[key]
	if !ok {
		data = embeddedFonts["sans-serif-regular"]
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, nil, newError(ErrFaceLoadFailed, "parse embedded font: "+err.Error())
	}

	faceCacheMu.Lock()
	faceCache[key] = face
	dataCache[key] = data
	faceCacheMu.Unlock()
	return face, data, nil
}

// defaultSystemFace returns the embedded regular sans-serif face, the last
// rung of the resolution ladder in §4.1.
func defaultSystemFace() (font.Face, []byte, error) {
	return loadEmbeddedFont("sans-serif-regular")
}

// hasSFNTTable reports whether the raw sfnt/ttf byte stream declares a
// table with the given 4-byte tag, by walking the table directory
// directly. go-text/typesetting's font.Face interface (see
// NormalizeVariations in its FaceMetrics) does not enumerate raw table
// tags, so variability detection falls back to this small binary scan —
// the one place this engine reads a font file below the library's API,
// justified in DESIGN.md.
func hasSFNTTable(data []byte, tag string) bool {
	if len(data) < 12 || len(tag) != 4 {
		return false
	}
	// TTC (TrueType collection) header check: "ttcf" offsets to the first font.
	base := 0
	if string(data[0:4]) == "ttcf" {
		if len(data) < 16 {
			return false
		}
		base = int(binary.BigEndian.Uint32(data[12:16]))
	}
	if base+12 > len(data) {
		return false
	}
	numTables := int(binary.BigEndian.Uint16(data[base+4 : base+6]))
	recStart := base + 12
	tagBytes := []byte(tag)
	for i := 0; i < numTables; i++ {
		off := recStart + i*16
		if off+16 > len(data) {
			break
		}
		if bytes.Equal(data[off:off+4], tagBytes) {
			return true
		}
	}
	return false
}

func filenameLooksVariable(path string) bool {
	lower := strings.ToLower(path)
	if strings.Contains(lower, "variable") {
		return true
	}
	base := lower
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	for _, part := range strings.FieldsFunc(base, func(r rune) bool { return r == '-' || r == '.' || r == '_' }) {
		if part == "vf" {
			return true
		}
	}
	return false
}
