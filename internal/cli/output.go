package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcoot/whamageddon/internal/api/response"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case response.Countdown:
		o.printCountdown(v)
	case response.Stats:
		o.printStats(v)
	case response.GroupStats:
		o.printGroupStats(v)
	case response.Group:
		o.printGroup(v)
	case response.Leaderboard:
		o.printLeaderboard(v)
	case []response.Player:
		for _, p := range v {
			o.printPlayerLine(p)
		}
	case response.Player:
		o.printPlayer(v)
	case response.JoinResponse:
		o.printPlayer(v.Player)
		fmt.Fprintf(o.w, "User: %s\n", v.UserID)
	case response.Profile:
		o.printProfile(v)
	case response.Recovery:
		fmt.Fprintf(o.w, "Recovered user %s\n", v.UserID)
		for _, p := range v.Players {
			o.printPlayerLine(p)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printCountdown(c response.Countdown) {
	switch c.Phase {
	case "before":
		fmt.Fprintf(o.w, "Whamageddon starts 1 December. %d days until the 24th.\n", c.DaysRemaining)
	case "over":
		fmt.Fprintln(o.w, "Whamageddon is over for this year.")
	default:
		fmt.Fprintf(o.w, "%d days left. Stay strong.\n", c.DaysRemaining)
	}
}

func (o *Output) printTotals(t response.Totals) {
	fmt.Fprintf(o.w, "Players: %d (%d standing, %d whammed)\n", t.Players, t.Alive, t.Whammed)
	fmt.Fprintf(o.w, "Survival: %.0f%%\n", t.SurvivalRate*100)
}

func (o *Output) printStats(s response.Stats) {
	fmt.Fprintf(o.w, "Groups: %d\n", s.Groups)
	fmt.Fprintf(o.w, "People: %d\n", s.Users)
	o.printTotals(s.Totals)
	if len(s.Ranking) > 0 {
		fmt.Fprintln(o.w, "Ranking:")
		for i, g := range s.Ranking {
			fmt.Fprintf(o.w, "  %d. %s (%s) %.0f%% of %d\n", i+1, g.Name, g.Slug, g.SurvivalRate*100, g.Players)
		}
	}
}

func (o *Output) printGroupStats(g response.GroupStats) {
	fmt.Fprintf(o.w, "Group: %s (%s)\n", g.Name, g.Slug)
	o.printTotals(g.Totals)
}

func (o *Output) printGroup(g response.Group) {
	fmt.Fprintf(o.w, "Group: %s\n", g.Name)
	fmt.Fprintf(o.w, "Slug: %s\n", g.Slug)
	if g.HasPassword {
		fmt.Fprintln(o.w, "Password: required")
	}
}

func (o *Output) printLeaderboard(b response.Leaderboard) {
	o.printGroup(b.Group)
	fmt.Fprintf(o.w, "\nStill standing (%d):\n", len(b.Survivors))
	for _, p := range b.Survivors {
		o.printPlayerLine(p)
	}
	fmt.Fprintf(o.w, "\nWhammed (%d):\n", len(b.Fallen))
	for _, p := range b.Fallen {
		o.printPlayerLine(p)
	}
}

func (o *Output) printPlayerLine(p response.Player) {
	var b strings.Builder
	fmt.Fprintf(&b, "  - %s", p.Name)
	if p.Company != "" {
		fmt.Fprintf(&b, " [%s]", p.Company)
	}
	fmt.Fprintf(&b, " (%s)", p.ID)
	if p.WhammedAt != nil {
		fmt.Fprintf(&b, " whammed %s", p.WhammedAt.Local().Format(time.DateTime))
		if p.WhamReason != "" {
			fmt.Fprintf(&b, ": %q", p.WhamReason)
		}
	}
	fmt.Fprintln(o.w, b.String())
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(o.w, "Group: %s\n", p.GroupSlug)
	fmt.Fprintf(o.w, "Status: %s\n", p.Status)
	if p.WhamReason != "" {
		fmt.Fprintf(o.w, "Reason: %s\n", p.WhamReason)
	}
}

func (o *Output) printProfile(p response.Profile) {
	fmt.Fprintf(o.w, "Name: %s\n", p.Name)
	if p.Company != "" {
		fmt.Fprintf(o.w, "Company: %s\n", p.Company)
	}
	fmt.Fprintf(o.w, "Status: %s\n", p.Status)
	fmt.Fprintf(o.w, "User: %s\n", p.UserID)
	fmt.Fprintf(o.w, "Groups (%d):\n", len(p.Players))
	for _, row := range p.Players {
		fmt.Fprintf(o.w, "  - %s as %s (%s)\n", row.GroupSlug, row.Name, row.Status)
	}
}
