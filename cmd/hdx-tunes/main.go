/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hdxtunes/internal/config"
	"hdxtunes/internal/logging"
	"hdxtunes/internal/navigator"
	"hdxtunes/internal/remote"
	"hdxtunes/internal/session"
	"hdxtunes/internal/state"
	"hdxtunes/internal/tracks"
	"hdxtunes/internal/ui"
	"hdxtunes/pkg/audioengine"
	"hdxtunes/pkg/spec"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var opts struct {
	path         string
	defaultColor bool
	tick         int
}

var rootCmd = &cobra.Command{
	Use:   spec.AppName,
	Short: "Terminal music player with a live spectrum",
	Long: `hdx-tunes plays a queue of local audio files (mp3, flac, ogg, wav, opus)
and draws a frequency spectrum in sync with playback.

Without --path the queue saved by the previous session is resumed.`,
	Version:       fmt.Sprintf("%d.%d", spec.VersionMajor, spec.VersionMinor),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&opts.path, "path", "p", "",
		"Song file or directory of songs to queue")
	rootCmd.Flags().BoolVarP(&opts.defaultColor, "default-color", "d", false,
		"Use yellow instead of a per-track color")
	rootCmd.Flags().IntVar(&opts.tick, "tick", int(spec.TickRate/time.Millisecond),
		"Spectrum refresh interval in milliseconds")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[Error] %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cmd.Flags().Changed("tick") && opts.tick > 0 {
		cfg.Tick = time.Duration(opts.tick) * time.Millisecond
	}

	log, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	list, err := initialQueue(opts.path, cfg.QueueFile)
	if err != nil {
		return err
	}
	nav := navigator.New(list)
	log.Info().Int("tracks", len(list)).Str("path", opts.path).Msg("start")

	out, err := audioengine.NewOutput(spec.OutputSampleRate, spec.OutputBuffer)
	if err != nil {
		return err
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmds := make(chan session.Command, 16)

	var publish func(session.Frame)
	if cfg.Socket != "" {
		srv := remote.New(cfg.Socket, cmds, log)
		if err := srv.Listen(); err != nil {
			log.Warn().Err(err).Msg("remote control disabled")
		} else {
			go srv.Serve(ctx)
			defer srv.Close()
			publish = srv.Publish
		}
	}

	term, err := ui.Open(os.Stdin, os.Stdout, cmds)
	if err != nil {
		return err
	}

	loop := session.New(nav, session.Config{
		Input:    session.ChannelInput(cmds),
		Prompter: ui.NewPrompt(term, cfg.SearchDir),
		Renderer: ui.NewView(term.Out(), term.Width, opts.defaultColor),
		Loader:   engineLoader{out: out, tick: cfg.Tick},
		Store:    tracks.Load,
		Tags:     tracks.ReadTags,
		Publish:  publish,
		Tick:     cfg.Tick,
		Logger:   log,
	})
	runErr := loop.Run(ctx)
	term.Restore()
	if runErr != nil {
		log.Error().Err(runErr).Msg("session failed, queue not saved")
	}
	return finish(runErr, cfg.QueueFile, tracks.Paths(nav.Remaining()), os.Stdout)
}

// finish writes the remaining queue back, but only after a clean exit.
func finish(runErr error, queueFile string, remaining []string, out io.Writer) error {
	if runErr != nil {
		return runErr
	}
	if len(remaining) == 0 {
		fmt.Fprintln(out, "nothing to write")
		return nil
	}
	if err := state.Save(queueFile, remaining); err != nil {
		fmt.Fprintf(out, "[Error] %v\n", err)
	}
	return nil
}

// initialQueue loads --path when given, otherwise the saved queue.
func initialQueue(path, queueFile string) ([]tracks.Track, error) {
	if path != "" {
		list, err := tracks.Load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "load songs from %s", path)
		}
		return list, nil
	}
	paths, err := state.Load(queueFile)
	if err != nil {
		return nil, err
	}
	return tracks.FromPaths(paths), nil
}

// engineLoader opens the speaker stream first, then the analyzer's own decode.
type engineLoader struct {
	out  *audioengine.Output
	tick time.Duration
}

func (l engineLoader) Load(path string) (session.Analyzer, session.Sink, error) {
	sink, err := l.out.PlayOnce(path)
	if err != nil {
		return nil, nil, err
	}
	src, err := audioengine.OpenSource(path)
	if err != nil {
		sink.Stop()
		return nil, nil, err
	}
	return audioengine.NewAnalyzer(src, audioengine.WithTickRate(l.tick)), sink, nil
}
