package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/whamageddon/internal/api/response"
)

func newEventsCmd() *cobra.Command {
	var (
		jsonOutput bool
		useWS      bool
	)

	cmd := &cobra.Command{
		Use:   "events <slug>",
		Short: "Watch a group's leaderboard change live",
		Long: `Connect to a group and print every change as it happens.

By default this reads the web UI's SSE stream, whose events are:
  - connected: the stream is open
  - leaderboard: the re-rendered standings
  - changed: a row of the group was written

With --ws it reads the JSON API's websocket feed instead, where every
frame carries the full leaderboard.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if useWS {
				return streamFeed(cmd.Context(), cmd.OutOrStdout(), args[0], jsonOutput)
			}
			return streamEvents(cmd.Context(), cmd.OutOrStdout(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&useWS, "ws", false, "Use the websocket feed of the JSON API")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(ctx context.Context, w io.Writer, slug string, jsonOutput bool) error {
	// SSE is on the web router, not the API router
	endpoint := strings.TrimSuffix(cfg.ServerURL, "/") + "/" + url.PathEscape(slug) + "/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Fprintf(w, "Watching %s\n", slug)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				printEvent(w, currentEvent, strings.Join(dataLines, "\n"), jsonOutput)
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

func printEvent(w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		fmt.Fprintln(w, string(jsonData))
		return
	}

	displayData := strings.ReplaceAll(data, "\n", " ")
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", now.Format(time.DateTime), event, displayData)
}

// feedURL turns the server's http(s) base URL into the websocket feed URL
func feedURL(serverURL, slug string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path += groupPath(slug, "feed")
	return u.String(), nil
}

func streamFeed(ctx context.Context, w io.Writer, slug string, jsonOutput bool) error {
	endpoint, err := feedURL(cfg.ServerURL, slug)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			var errResp ErrorResponse
			if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error.Code != "" {
				return &errResp.Error
			}
			return fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Closing the connection unblocks the read loop on Ctrl+C
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if !jsonOutput {
		fmt.Fprintf(w, "Watching %s\n", slug)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				if !jsonOutput {
					fmt.Fprintln(w, "Disconnected")
				}
				return nil
			}
			return fmt.Errorf("feed error: %w", err)
		}

		if jsonOutput {
			fmt.Fprintln(w, string(data))
			continue
		}

		var msg response.FeedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("bad feed frame: %w", err)
		}
		printFeedMessage(w, msg)
		if msg.Type == response.FeedGone {
			return errors.New("group was deleted")
		}
	}
}

func printFeedMessage(w io.Writer, msg response.FeedMessage) {
	timestamp := time.Now().Format(time.DateTime)
	if msg.Leaderboard == nil {
		fmt.Fprintf(w, "[%s] %s\n", timestamp, msg.Type)
		return
	}
	lb := msg.Leaderboard
	fmt.Fprintf(w, "[%s] %s: %d standing, %d whammed\n", timestamp, msg.Type, len(lb.Survivors), len(lb.Fallen))
	if msg.Change != nil && msg.Change.PlayerID != "" {
		for _, p := range lb.Players {
			if p.ID == string(msg.Change.PlayerID) {
				fmt.Fprintf(w, "  %s is %s\n", p.Name, p.Status)
			}
		}
	}
}
