package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"hdxtunes/pkg/spec"
)

// Config holds runtime configuration, loaded from environment variables.
type Config struct {
	Home      string // state dir, default ~/.config/hdx-tunes
	QueueFile string // persisted queue
	LogFile   string
	LogLevel  string

	// Starting path of the add-songs dialog
	SearchDir string

	// Remote control socket, empty = disabled
	Socket string

	Tick time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	home := envStr("HDX_TUNES_HOME", defaultHome())

	socket := envStr("HDX_TUNES_SOCKET", "/tmp/hdx-tunes.sock")
	if socket == "off" {
		socket = ""
	}

	tick := envInt("HDX_TUNES_TICK_MS", int(spec.TickRate/time.Millisecond))
	if tick <= 0 {
		tick = int(spec.TickRate / time.Millisecond)
	}

	return Config{
		Home:      home,
		QueueFile: envStr("HDX_TUNES_QUEUE", filepath.Join(home, "songs.txt")),
		LogFile:   envStr("HDX_TUNES_LOG", filepath.Join(home, "hdx-tunes.log")),
		LogLevel:  envStr("HDX_TUNES_LOG_LEVEL", "info"),
		SearchDir: envStr("MUSIC_HOME", os.Getenv("HOME")),
		Socket:    socket,
		Tick:      time.Duration(tick) * time.Millisecond,
	}
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".hdx-tunes"
	}
	return filepath.Join(home, ".config", spec.AppName)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
