package audio

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// DeviceID is a backend-specific device identifier. The concrete variant
// depends on the backend family that produced it.
type DeviceID interface {
	deviceID()
}

// WideID is a platform wide-character string (UTF-16 code units).
type WideID []uint16

// IntID is an index or handle based identifier.
type IntID int64

// BytesID is a fixed-size char array, NUL padded.
type BytesID []byte

// StringID is a UTF-8 string identifier.
type StringID string

// NoID marks backends without a usable distinguishing identifier.
type NoID struct{}

func (WideID) deviceID()   {}
func (IntID) deviceID()    {}
func (BytesID) deviceID()  {}
func (StringID) deviceID() {}
func (NoID) deviceID()     {}

var wideDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ResolveDeviceID converts id into a display/transport string for backend.
// Unknown backends and backends without usable identifiers yield
// fallbackName. An empty result means a wide string could not be
// converted and the caller should use the display name instead.
func ResolveDeviceID(id DeviceID, backend Backend, fallbackName string) string {
	if !backend.Valid() || backend == BackendCustom || backend == BackendDirectSound {
		return fallbackName
	}

	switch v := id.(type) {
	case WideID:
		return wideToUTF8(v)
	case IntID:
		return strconv.FormatInt(int64(v), 10)
	case BytesID:
		if i := bytes.IndexByte(v, 0); i >= 0 {
			v = v[:i]
		}
		if len(v) == 0 {
			return fallbackName
		}
		return string(v)
	case StringID:
		if v == "" {
			return fallbackName
		}
		return string(v)
	default:
		return fallbackName
	}
}

func wideToUTF8(w WideID) string {
	n := len(w)
	for i, u := range w {
		if u == 0 {
			n = i
			break
		}
	}
	if n == 0 {
		return ""
	}

	raw := make([]byte, 2*n)
	for i, u := range w[:n] {
		binary.LittleEndian.PutUint16(raw[2*i:], u)
	}
	out, err := wideDecoder.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	// Unpaired surrogates decode to U+FFFD instead of failing.
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) {
		return ""
	}
	return s
}

// DisplayID resolves the device identifier for backend, falling back to the
// device name when the identifier cannot be converted.
func (d Device) DisplayID(backend Backend) string {
	if id := ResolveDeviceID(d.ID, backend, d.Name); id != "" {
		return id
	}
	return d.Name
}
