// SPDX-License-Identifier: MIT
package miniaudio

import (
	"bytes"
	"encoding/binary"

	"nativeaudio/internal/audio"
)

// Sizes of the ma_device_id union members that are not plain char arrays.
const (
	wasapiIDChars = 64
	dsoundIDBytes = 16
)

// decodeDeviceID reads the member of miniaudio's ma_device_id union that
// backend fills in.
func decodeDeviceID(raw []byte, backend audio.Backend) audio.DeviceID {
	switch backend {
	case audio.BackendWASAPI:
		n := min(wasapiIDChars, len(raw)/2)
		wide := make(audio.WideID, n)
		for i := range wide {
			wide[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		return wide
	case audio.BackendDirectSound:
		return audio.BytesID(bytes.Clone(raw[:min(dsoundIDBytes, len(raw))]))
	case audio.BackendWinMM, audio.BackendOpenSL:
		if len(raw) < 4 {
			return audio.NoID{}
		}
		return audio.IntID(binary.NativeEndian.Uint32(raw))
	case audio.BackendJACK, audio.BackendAAudio, audio.BackendNull:
		if len(raw) < 4 {
			return audio.NoID{}
		}
		return audio.IntID(int32(binary.NativeEndian.Uint32(raw)))
	case audio.BackendCoreAudio, audio.BackendSndio, audio.BackendAudio4,
		audio.BackendOSS, audio.BackendPulseAudio, audio.BackendALSA:
		return audio.BytesID(cstring(raw))
	case audio.BackendWebAudio:
		return audio.StringID(cstring(raw))
	default:
		return audio.NoID{}
	}
}

func cstring(raw []byte) []byte {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return bytes.Clone(raw)
}
