package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"hdxtunes/internal/config"
	"hdxtunes/pkg/spec"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const appName = "hdx-tunes-ctl"

var socketPath string

var rootCmd = &cobra.Command{
	Use:   appName + " [command]",
	Short: "Remote control for a running hdx-tunes",
	Long: `Without arguments an interactive prompt is opened. With arguments they
are sent as one command and the reply is printed.

Commands: PING STATUS WHOAMI ABOUT NEXT BACK PAUSE RESUME RESTART SHUFFLE ADD <path> QUIT`,
	Version:       fmt.Sprintf("%d.%d", spec.VersionMajor, spec.VersionMinor),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&socketPath, "socket", "s", config.Load().Socket,
		"hdx-tunes control socket")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[Error] %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if socketPath == "" {
		return errors.New("remote control is disabled (HDX_TUNES_SOCKET=off)")
	}
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer conn.Close()

	if len(args) > 0 {
		return oneShot(conn, strings.Join(args, " "), os.Stdout)
	}
	return interactive(conn)
}

func oneShot(conn net.Conn, line string, out io.Writer) error {
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		return err
	}
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return err
	}
	fmt.Fprint(out, resp)
	return nil
}

func interactive(conn net.Conn) error {
	fmt.Printf("\n%s V.%d.%d\n", appName, spec.VersionMajor, spec.VersionMinor)
	fmt.Println("CONNECTED", socketPath)
	fmt.Println(`Type "EXIT" to leave, "QUIT" stops the player`)
	fmt.Println()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "hdx> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("PING"), readline.PcItem("STATUS"), readline.PcItem("WHOAMI"),
			readline.PcItem("ABOUT"), readline.PcItem("NEXT"), readline.PcItem("BACK"),
			readline.PcItem("PAUSE"), readline.PcItem("RESUME"), readline.PcItem("RESTART"),
			readline.PcItem("SHUFFLE"), readline.PcItem("ADD"), readline.PcItem("QUIT"),
		),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	// IPC → stdout
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			fmt.Fprintln(rl.Stdout(), "RECV:", sc.Text())
		}
		fmt.Fprintln(rl.Stdout(), "SOCKET CLOSED")
	}()

	for {
		line, err := rl.Readline()
		if err != nil { // ErrInterrupt / EOF
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "EXIT") {
			fmt.Println("Bye.")
			return nil
		}
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			return errors.Wrap(err, "write")
		}

		select {
		case <-closed:
			return nil
		default:
		}
	}
}
