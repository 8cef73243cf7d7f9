/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the HDX (Hardix Audio) project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package remote exposes the running player on a unix socket with a
// line-based protocol. Read-only commands are open to every client;
// control commands belong to the first client that sends one, until it
// disconnects.
package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"hdxtunes/internal/session"
	"hdxtunes/pkg/spec"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Status is the STATUS reply.
type Status struct {
	Playing bool     `json:"playing"`
	Paused  bool     `json:"paused"`
	Track   string   `json:"track"`
	Path    string   `json:"path"`
	UpNext  []string `json:"up_next"`
	History []string `json:"history"`
	Message string   `json:"message,omitempty"`
}

type Server struct {
	path string
	cmds chan<- session.Command
	log  zerolog.Logger

	ln net.Listener

	stateMu sync.Mutex
	state   Status

	controlMu    sync.Mutex
	controlOwner net.Conn

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool // set by Close; no wg.Add after this
	wg     sync.WaitGroup
}

func New(path string, cmds chan<- session.Command, log zerolog.Logger) *Server {
	return &Server{
		path:  path,
		cmds:  cmds,
		log:   log,
		conns: map[net.Conn]struct{}{},
	}
}

// Listen binds the socket, replacing a stale one.
func (s *Server) Listen() error {
	_ = os.Remove(s.path)
	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.path)
	}
	s.ln = ln
	return nil
}

// Serve accepts clients until ctx is done or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("remote: Serve before Listen")
	}
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		c, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept")
			continue
		}

		s.connMu.Lock()
		if s.closed {
			s.connMu.Unlock()
			c.Close()
			return nil
		}
		s.conns[c] = struct{}{}
		s.wg.Add(1)
		s.connMu.Unlock()

		go s.handleConn(c)
	}
}

// Close stops accepting, drops every client and removes the socket file.
func (s *Server) Close() error {
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.connMu.Lock()
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	s.connMu.Unlock()
	s.wg.Wait()
	os.Remove(s.path)
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Publish records the latest frame for STATUS.
func (s *Server) Publish(f session.Frame) {
	st := Status{
		Playing: f.Playing,
		Paused:  f.Paused,
		Track:   f.Track.Name,
		Path:    f.Track.Path,
		UpNext:  append([]string(nil), f.UpNext...),
		History: append([]string(nil), f.History...),
		Message: f.Message,
	}
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

func (s *Server) snapshot() Status {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

// ===============================
// Ownership
// ===============================

func (s *Server) isOwner(c net.Conn) bool {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	return s.controlOwner == c
}

func (s *Server) claimOwner(c net.Conn) bool {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	if s.controlOwner == nil {
		s.controlOwner = c
		return true
	}
	return s.controlOwner == c
}

func (s *Server) releaseOwner(c net.Conn) {
	s.controlMu.Lock()
	defer s.controlMu.Unlock()
	if s.controlOwner == c {
		s.controlOwner = nil
	}
}

// ===============================
// Protocol
// ===============================

var controlReplies = map[string]struct {
	op    session.Op
	reply string
}{
	"NEXT":    {session.OpNext, "Jump"},
	"BACK":    {session.OpBack, "Back"},
	"PAUSE":   {session.OpPause, "Paused"},
	"RESUME":  {session.OpResume, "Resume Playing"},
	"RESTART": {session.OpRestart, "Restart"},
	"SHUFFLE": {session.OpShuffle, "Shuffled"},
	"ADD":     {session.OpAdd, "Adding"},
	"QUIT":    {session.OpQuit, "Bye"},
}

func (s *Server) handleConn(c net.Conn) {
	defer func() {
		s.releaseOwner(c)
		c.Close()
		s.connMu.Lock()
		delete(s.conns, c)
		s.connMu.Unlock()
		s.wg.Done()
	}()

	w := bufio.NewWriter(c)
	reply := func(msg string) bool {
		w.WriteString(msg + "\n")
		return w.Flush() == nil
	}

	sc := bufio.NewScanner(c)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		// verb + raw arg, path boleh berisi spasi
		parts := strings.SplitN(line, " ", 2)
		verb := strings.ToUpper(parts[0])
		arg := ""
		if len(parts) == 2 {
			arg = strings.TrimSpace(parts[1])
		}

		var ok bool
		switch verb {
		case "ABOUT":
			ok = reply(fmt.Sprintf("%s V.%d.%d", spec.AppName, spec.VersionMajor, spec.VersionMinor))
		case "PING":
			ok = reply("Pong")
		case "WHOAMI":
			if s.isOwner(c) {
				ok = reply("OWNER")
			} else {
				ok = reply("OBSERVER")
			}
		case "STATUS":
			j, err := json.Marshal(s.snapshot())
			if err != nil {
				ok = reply("ERR INTERNAL")
			} else {
				ok = reply(string(j))
			}
		default:
			ok = reply(s.control(c, verb, arg))
		}
		if !ok {
			return
		}
	}
}

// control handles commands that need ownership and returns the reply line.
func (s *Server) control(c net.Conn, verb, arg string) string {
	entry, known := controlReplies[verb]
	if !known {
		return "ERR UNKNOWN"
	}
	if !s.claimOwner(c) {
		return "ERR CONTROL_LOCKED"
	}

	cmd := session.Command{Op: entry.op}
	if entry.op == session.OpAdd {
		if arg == "" {
			return "ERR ARG"
		}
		cmd.Path = arg
	}

	select {
	case s.cmds <- cmd:
		s.log.Info().Stringer("op", cmd.Op).Str("path", cmd.Path).Msg("remote command")
		return entry.reply
	default:
		return "ERR BUSY"
	}
}
