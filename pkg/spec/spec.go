package spec

import "time"

const (
	// === IDENTITY & VERSIONING ===
	AppName      = "hdx-tunes"
	VersionMajor = 1
	VersionMinor = 0

	// === ENGINE SPECS ===
	NumBars        = 48
	TickRate       = 50 * time.Millisecond
	HannWindowSize = 2048
	FreqLow        = 40.0
	FreqHigh       = 5000.0

	// Sample rate speaker, track lain di-resample ke sini
	OutputSampleRate = 44100
	OutputBuffer     = 100 * time.Millisecond

	// Panjang list up-next / history di UI
	ListLimit = 20
)

// SupportedFormats are the file extensions (without dot) a directory scan keeps.
var SupportedFormats = []string{"mp3", "flac", "ogg", "wav", "aac", "opus"}
