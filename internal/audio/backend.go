package audio

import (
	"fmt"
	"strconv"
	"strings"
)

// Backend identifies a native audio subsystem. Values follow miniaudio's
// ma_backend numbering so they can be passed to drivers unchanged.
type Backend uint32

const (
	BackendWASAPI Backend = iota
	BackendDirectSound
	BackendWinMM
	BackendCoreAudio
	BackendSndio
	BackendAudio4
	BackendOSS
	BackendPulseAudio
	BackendALSA
	BackendJACK
	BackendAAudio
	BackendOpenSL
	BackendWebAudio
	BackendCustom
	BackendNull

	backendCount
)

var backendNames = [backendCount]string{
	BackendWASAPI:      "WASAPI",
	BackendDirectSound: "DirectSound",
	BackendWinMM:       "WinMM",
	BackendCoreAudio:   "Core Audio",
	BackendSndio:       "sndio",
	BackendAudio4:      "audio(4)",
	BackendOSS:         "OSS",
	BackendPulseAudio:  "PulseAudio",
	BackendALSA:        "ALSA",
	BackendJACK:        "JACK",
	BackendAAudio:      "AAudio",
	BackendOpenSL:      "OpenSL|ES",
	BackendWebAudio:    "Web Audio",
	BackendCustom:      "Custom",
	BackendNull:        "Null",
}

var backendAliases = map[string]Backend{
	"wasapi":     BackendWASAPI,
	"dsound":     BackendDirectSound,
	"winmm":      BackendWinMM,
	"coreaudio":  BackendCoreAudio,
	"sndio":      BackendSndio,
	"audio4":     BackendAudio4,
	"oss":        BackendOSS,
	"pulse":      BackendPulseAudio,
	"pulseaudio": BackendPulseAudio,
	"alsa":       BackendALSA,
	"jack":       BackendJACK,
	"aaudio":     BackendAAudio,
	"opensl":     BackendOpenSL,
	"webaudio":   BackendWebAudio,
	"custom":     BackendCustom,
	"null":       BackendNull,
}

// Valid reports whether b is a known backend value.
func (b Backend) Valid() bool {
	return b < backendCount
}

func (b Backend) String() string {
	if !b.Valid() {
		return "Unknown"
	}
	return backendNames[b]
}

// ParseBackend accepts a backend name ("PulseAudio"), a short alias
// ("pulse") or its numeric id ("7").
func ParseBackend(s string) (Backend, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if b, ok := backendAliases[key]; ok {
		return b, nil
	}
	for i, name := range backendNames {
		if strings.EqualFold(name, key) {
			return Backend(i), nil
		}
	}
	if n, err := strconv.ParseUint(key, 10, 32); err == nil && Backend(n).Valid() {
		return Backend(n), nil
	}
	return 0, fmt.Errorf("unknown audio backend %q", s)
}
