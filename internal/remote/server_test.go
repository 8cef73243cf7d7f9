package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hdxtunes/internal/session"
	"hdxtunes/internal/tracks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, buf int) (*Server, chan session.Command, string) {
	t.Helper()
	dir, err := os.MkdirTemp("", "hdxt")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "r.sock")
	cmds := make(chan session.Command, buf)
	s := New(path, cmds, zerolog.Nop())
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, s.Close())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return")
		}
	})
	return s, cmds, path
}

type client struct {
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, path string) *client {
	t.Helper()
	c, err := net.Dial("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return &client{conn: c, r: bufio.NewReader(c)}
}

func (c *client) send(t *testing.T, line string) string {
	t.Helper()
	_, err := c.conn.Write([]byte(line + "\n"))
	require.NoError(t, err)
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	resp, err := c.r.ReadString('\n')
	require.NoError(t, err)
	return resp[:len(resp)-1]
}

func TestReadOnlyCommands(t *testing.T) {
	_, _, path := startServer(t, 4)
	c := dial(t, path)

	assert.Equal(t, "Pong", c.send(t, "PING"))
	assert.Equal(t, "Pong", c.send(t, "ping"))
	assert.Equal(t, "hdx-tunes V.1.0", c.send(t, "ABOUT"))
	assert.Equal(t, "OBSERVER", c.send(t, "WHOAMI"))
	assert.Equal(t, "ERR UNKNOWN", c.send(t, "DANCE"))
}

func TestControlCommandsReachLoop(t *testing.T) {
	_, cmds, path := startServer(t, 8)
	c := dial(t, path)

	cases := []struct {
		line  string
		reply string
		op    session.Op
	}{
		{"NEXT", "Jump", session.OpNext},
		{"BACK", "Back", session.OpBack},
		{"PAUSE", "Paused", session.OpPause},
		{"RESUME", "Resume Playing", session.OpResume},
		{"RESTART", "Restart", session.OpRestart},
		{"SHUFFLE", "Shuffled", session.OpShuffle},
		{"QUIT", "Bye", session.OpQuit},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.reply, c.send(t, tc.line), tc.line)
		got := <-cmds
		assert.Equal(t, tc.op, got.Op, tc.line)
	}
	assert.Equal(t, "OWNER", c.send(t, "WHOAMI"))
}

func TestAddKeepsSpacesInPath(t *testing.T) {
	_, cmds, path := startServer(t, 2)
	c := dial(t, path)

	assert.Equal(t, "ERR ARG", c.send(t, "ADD"))
	assert.Equal(t, "Adding", c.send(t, "ADD /music/Pink Floyd/"))
	got := <-cmds
	assert.Equal(t, session.Command{Op: session.OpAdd, Path: "/music/Pink Floyd/"}, got)
}

func TestSingleOwner(t *testing.T) {
	_, cmds, path := startServer(t, 4)
	a := dial(t, path)
	b := dial(t, path)

	assert.Equal(t, "Jump", a.send(t, "NEXT"))
	<-cmds
	assert.Equal(t, "ERR CONTROL_LOCKED", b.send(t, "NEXT"))
	assert.Equal(t, "Pong", b.send(t, "PING"))

	a.conn.Close()
	assert.Eventually(t, func() bool {
		b.conn.Write([]byte("PAUSE\n"))
		b.conn.SetReadDeadline(time.Now().Add(time.Second))
		resp, err := b.r.ReadString('\n')
		return err == nil && resp == "Paused\n"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestBusyWhenLoopLags(t *testing.T) {
	_, _, path := startServer(t, 1)
	c := dial(t, path)

	assert.Equal(t, "Jump", c.send(t, "NEXT"))
	assert.Equal(t, "ERR BUSY", c.send(t, "NEXT"))
}

func TestStatusReflectsPublish(t *testing.T) {
	s, _, path := startServer(t, 1)
	s.Publish(session.Frame{
		Track:   tracks.New("/m/Ceremony.flac"),
		Playing: true,
		Paused:  true,
		UpNext:  []string{"Temptation"},
	})

	c := dial(t, path)
	var st Status
	require.NoError(t, json.Unmarshal([]byte(c.send(t, "STATUS")), &st))
	assert.True(t, st.Playing)
	assert.True(t, st.Paused)
	assert.Equal(t, "Ceremony", st.Track)
	assert.Equal(t, "/m/Ceremony.flac", st.Path)
	assert.Equal(t, []string{"Temptation"}, st.UpNext)
}

func TestServeBeforeListen(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "x.sock"), nil, zerolog.Nop())
	assert.Error(t, s.Serve(context.Background()))
}

func TestCloseWhileClientsConnect(t *testing.T) {
	dir, err := os.MkdirTemp("", "hdxt")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "r.sock")
	s := New(path, make(chan session.Command, 1), zerolog.Nop())
	require.NoError(t, s.Listen())

	served := make(chan error, 1)
	go func() { served <- s.Serve(context.Background()) }()

	stop := make(chan struct{})
	dialed := make(chan struct{})
	go func() {
		defer close(dialed)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if c, err := net.Dial("unix", path); err == nil {
				c.Write([]byte("PING\n"))
				c.Close()
			}
		}
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Close())
	close(stop)
	<-dialed

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
	require.NoError(t, s.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
