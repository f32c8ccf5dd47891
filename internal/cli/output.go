package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/battleship/internal/api/response"
)

// cellSymbols maps grid cell names to the characters drawn for them
var cellSymbols = map[string]string{
	response.CellEmpty: ".",
	"ship":             "S",
	"hit":              "X",
	"miss":             "o",
	"sunk":             "#",
}

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
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
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Player:
		o.printPlayer(v)
	case response.AuthResponse:
		o.printAuth(v)
	case response.Stats:
		o.printStats(v)
	case response.Match:
		o.printMatch(v)
	case response.MatchList:
		o.printMatchList(v)
	case response.MatchView:
		o.printMatchView(v)
	case response.FireResult:
		o.printFireResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printPlayer(p response.Player) {
	kind := "registered"
	switch {
	case p.IsBot:
		kind = "bot"
	case p.IsGuest:
		kind = "guest"
	}
	o.printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	if p.Username != "" {
		o.printf("Username: %s\n", p.Username)
	}
	o.printf("Account: %s\n", kind)
	o.printf("Level: %d\n", p.Level)
}

func (o *Output) printAuth(a response.AuthResponse) {
	o.printPlayer(a.Player)
	o.printf("Token: %s\n", a.SessionToken)
	o.printf("Expires: %s\n", a.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
}

func (o *Output) printStats(s response.Stats) {
	o.printf("Played: %d\n", s.Played)
	o.printf("Wins: %d\n", s.Wins)
	o.printf("Losses: %d\n", s.Losses)
	o.printf("In progress: %d\n", s.InProgress)
}

func (o *Output) printMatch(m response.Match) {
	o.printf("Match: %s\n", m.ID)
	o.printf("Status: %s\n", m.Status)
	o.printf("Player A: %s\n", m.PlayerA)
	if m.PlayerB != nil {
		o.printf("Player B: %s\n", *m.PlayerB)
	} else {
		o.printf("Player B: (waiting)\n")
	}
	if m.Winner != nil {
		o.printf("Winner: %s\n", *m.Winner)
	}
}

func (o *Output) printMatchList(l response.MatchList) {
	if len(l.Matches) == 0 {
		o.printf("No matches\n")
		return
	}
	o.printf("%-8s %-12s %-8s %-8s %s\n", "ID", "STATUS", "A", "B", "CREATED")
	for _, m := range l.Matches {
		b := "-"
		if m.PlayerB != nil {
			b = *m.PlayerB
		}
		o.printf("%-8s %-12s %-8s %-8s %s\n", m.ID, m.Status, m.PlayerA, b, m.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (o *Output) printMatchView(v response.MatchView) {
	o.printf("Match: %s (%s)\n", v.Match.ID, v.Match.Status)
	switch {
	case v.Match.Winner != nil && *v.Match.Winner == v.ViewerID:
		o.printf("You won!\n")
	case v.Match.Winner != nil:
		o.printf("You lost. Winner: %s\n", *v.Match.Winner)
	case v.OpponentID == nil:
		o.printf("Waiting for an opponent\n")
	case v.YourTurn:
		o.printf("Your turn\n")
	default:
		o.printf("Opponent's turn\n")
	}

	o.printf("\nYour fleet (%d ships afloat, %d shots received):\n", v.ShipsRemaining, v.ShotsReceived)
	o.printGrid(v.OwnGrid)
	o.printf("\nTarget (%d enemy ships afloat, %d shots fired):\n", v.EnemyShipsRemaining, v.ShotsFired)
	o.printGrid(v.TargetGrid)

	if len(v.EnemySunk) > 0 {
		o.printf("\nSunk: %s\n", strings.Join(v.EnemySunk, ", "))
	}
	if v.LastShot != nil {
		o.printf("Last shot: %s at (%d,%d) %s\n",
			v.LastShot.Attacker, v.LastShot.Target.Row, v.LastShot.Target.Col, hitOrMiss(v.LastShot.Hit))
	}
}

func (o *Output) printGrid(grid [][]string) {
	if len(grid) == 0 {
		return
	}

	size := len(grid)

	// Column headers
	o.printf("    ")
	for col := range size {
		o.printf(" %d ", col)
	}
	o.printf("\n")

	border := "   +" + strings.Repeat("---", size) + "+\n"
	o.printf("%s", border)

	for row := range size {
		o.printf(" %c |", 'A'+row)
		for _, cell := range grid[row] {
			symbol, ok := cellSymbols[cell]
			if !ok {
				symbol = "?"
			}
			o.printf(" %s ", symbol)
		}
		o.printf("|\n")
	}

	o.printf("%s", border)
}

func (o *Output) printFireResult(r response.FireResult) {
	o.printf("Shot at (%d,%d): %s\n", r.Shot.Target.Row, r.Shot.Target.Col, hitOrMiss(r.Hit))
	if r.Sunk != nil {
		o.printf("You sank their %s!\n", *r.Sunk)
	}

	for _, s := range r.BotShots {
		o.printf("Opponent fired at (%d,%d): %s\n", s.Target.Row, s.Target.Col, hitOrMiss(s.Hit))
		if s.Sunk != nil {
			o.printf("They sank your %s!\n", *s.Sunk)
		}
	}

	if r.MatchOver {
		o.printf("Match over!\n")
		if r.Winner != nil {
			o.printf("Winner: %s\n", *r.Winner)
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	o.printf("Status: %s\n", h.Status)
}

func hitOrMiss(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
