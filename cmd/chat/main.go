// Chat CLI entry point.
//
// A line-oriented client for the chat room that runs next to a screen
// share: every line typed is sent, everything said in the room is printed.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"

	"github.com/1ureka/screencast/internal/chat"
	"github.com/1ureka/screencast/internal/config"
	"github.com/1ureka/screencast/internal/util"
)

func main() {
	// Root context, cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	urlFlag := flag.String("url", "", "Chat WebSocket URL (e.g. ws://localhost:8000/ws)")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	scanner := bufio.NewScanner(os.Stdin)

	raw := *urlFlag
	if raw == "" {
		fmt.Print("Chat WebSocket URL (e.g. ws://localhost:8000/ws): ")
		scanner.Scan()
		raw = scanner.Text()
	}

	wsURL, err := config.NormalizeEndpoint(raw, config.ModeWS)
	if err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	c, err := chat.Dial(ctx, wsURL)
	if err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}
	defer c.Close()

	pterm.Info.Println(fmt.Sprintf("Joined %s as %s. Type a message and press Enter; Ctrl+C to leave.", wsURL, c.IP()))

	runErr := make(chan error, 1)
	go func() {
		runErr <- c.Run(ctx, func(m chat.Message) {
			pterm.Printf("%s %s\n", pterm.Cyan(m.IP+":"), m.Message)
		})
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			if err := c.Send(line); err != nil {
				util.LogError("%v", err)
				return
			}
		case err := <-runErr:
			if err != nil {
				util.LogError("%v", err)
			}
			return
		case <-ctx.Done():
			return
		}
	}
}
