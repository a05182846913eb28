package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"decidely-be/pkg/relay"

	"github.com/fatih/color"
)

// chatcli joins one thread over the relay socket and echoes stdin lines as messages.
func main() {
	url := flag.String("url", "ws://localhost:3000/api/ws/chat", "relay endpoint")
	token := flag.String("token", os.Getenv("DECIDELY_TOKEN"), "bearer token")
	thread := flag.String("thread", "", "thread id to join")
	flag.Parse()

	if *token == "" || *thread == "" {
		color.Red("usage: chatcli -token <jwt> -thread <id>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := relay.NewManager(relay.Config{URL: *url, Token: *token})
	defer m.Close()

	m.OnStateChange(func(s relay.State) {
		color.Cyan("[state] %s", s)
	})
	m.OnJoined(func(threadID string) {
		color.Green("[joined] %s", threadID)
	})
	m.OnMessage(func(threadID string, payload json.RawMessage) {
		color.White("[%s] %s", threadID, string(payload))
	})
	m.OnTyping(func(threadID string, t relay.TypingPayload) {
		if t.IsTyping {
			color.Yellow("[%s] %s is typing...", threadID, t.UserID)
		}
	})
	m.OnError(func(threadID, message string) {
		color.Red("[error] %s %s", threadID, message)
	})

	if err := m.JoinThread(*thread); err != nil {
		color.Red("join failed: %v", err)
		os.Exit(1)
	}
	if err := m.Connect(ctx); err != nil {
		color.Red("connect failed: %v", err)
		os.Exit(1)
	}

	typing := relay.NewTypingDebouncer(m, *thread, relay.DefaultTypingDelay)
	defer typing.Stop()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	fmt.Println("type a message and press enter, ctrl+c to quit")
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			typing.Keystroke()
			if err := m.Publish(*thread, map[string]string{"content": line}); err != nil {
				color.Red("publish failed: %v", err)
			}
			typing.Stop()
		}
	}
}
