package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/hookwatch/internal/history"
	"github.com/roach88/hookwatch/internal/project"
)

// NavAction is a pager button.
type NavAction string

const (
	NavFirst NavAction = "first"
	NavPrev  NavAction = "prev"
	NavNext  NavAction = "next"
	NavLast  NavAction = "last"
)

var (
	// ErrNoSuchRow is returned when a row number is outside the history.
	ErrNoSuchRow = errors.New("no such row")
	// ErrUnknownCommand is returned by ParseCommand for unrecognized input.
	ErrUnknownCommand = errors.New("unknown command")
)

// OnNavigate moves the pager.
func (d *Dashboard) OnNavigate(action NavAction) error {
	switch action {
	case NavFirst:
		d.pager.First()
	case NavPrev:
		d.pager.Prev()
	case NavNext:
		d.pager.Next()
	case NavLast:
		d.pager.Last()
	default:
		return fmt.Errorf("%w: navigate %q", ErrUnknownCommand, action)
	}
	return nil
}

// OnPageSizeChanged applies and persists a new page setting.
func (d *Dashboard) OnPageSizeChanged(ctx context.Context, setting history.PageSetting) {
	d.pager.SetPageSize(ctx, setting)
}

// OnClear empties the history.
func (d *Dashboard) OnClear(ctx context.Context) {
	d.store.Clear(ctx)
}

// OnRowActivated shows the detail view of the record at history index.
func (d *Dashboard) OnRowActivated(index int) error {
	rec, ok := d.store.At(index)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSuchRow, index+1)
	}
	return WriteDetail(d.out, d.projector.Detail(rec))
}

// WriteDetail renders the detail view of one delivery.
func WriteDetail(w io.Writer, detail project.Detail) error {
	var buf bytes.Buffer
	buf.WriteString("WEBHOOK DETAIL\n")
	fmt.Fprintf(&buf, "%-10s%s\n", "Session:", detail.SessionID)
	fmt.Fprintf(&buf, "%-10s%s\n", "Event:", detail.Event)
	fmt.Fprintf(&buf, "%-10s%s\n", "Status:", detail.Status)
	fmt.Fprintf(&buf, "%-10s%s\n", "Time:", detail.Time)
	fmt.Fprintf(&buf, "%-10s%s\n", "URL:", detail.URL)
	buf.WriteString("Payload:\n")
	buf.WriteString(detail.Payload)
	buf.WriteString("\nResponse:\n")
	buf.WriteString(detail.Response)
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// Command is one line of terminal input.
type Command struct {
	Name string
	Arg  string
}

var commandAliases = map[string]string{
	"f":       "first",
	"first":   "first",
	"p":       "prev",
	"prev":    "prev",
	"n":       "next",
	"next":    "next",
	"l":       "last",
	"last":    "last",
	"s":       "size",
	"size":    "size",
	"o":       "show",
	"show":    "show",
	"clear":   "clear",
	"qr":      "qr",
	"close":   "close",
	"r":       "refresh",
	"refresh": "refresh",
	"h":       "help",
	"?":       "help",
	"help":    "help",
}

var commandsWithArg = map[string]bool{"size": true, "show": true, "qr": true}

// ParseCommand parses input such as "n", "size 25" or "show 3".
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrUnknownCommand)
	}
	name, ok := commandAliases[strings.ToLower(fields[0])]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	cmd := Command{Name: name}
	switch {
	case commandsWithArg[name] && len(fields) != 2:
		return Command{}, fmt.Errorf("%s takes one argument", name)
	case !commandsWithArg[name] && len(fields) != 1:
		return Command{}, fmt.Errorf("%s takes no arguments", name)
	}
	if len(fields) == 2 {
		cmd.Arg = fields[1]
	}
	return cmd, nil
}

// Help lists the terminal commands.
const Help = `commands:
  n, p, f, l        next, previous, first, last page
  size <n|all>      rows per page (10, 25, 50, 100, all)
  show <row>        delivery detail for a row number
  qr <session>      open the pairing dialog for a session
  close             close the pairing dialog
  clear             delete all history
  r                 redraw
`

// Execute runs a parsed command.
func (d *Dashboard) Execute(ctx context.Context, cmd Command) error {
	switch cmd.Name {
	case "first", "prev", "next", "last":
		return d.OnNavigate(NavAction(cmd.Name))
	case "size":
		setting, err := history.ParsePageSetting(cmd.Arg)
		if err != nil {
			return err
		}
		d.OnPageSizeChanged(ctx, setting)
	case "show":
		n, err := strconv.Atoi(cmd.Arg)
		if err != nil {
			return fmt.Errorf("row number: %w", err)
		}
		return d.OnRowActivated(n - 1)
	case "clear":
		d.OnClear(ctx)
	case "qr":
		d.OpenSession(cmd.Arg)
	case "close":
		d.CloseSession()
	case "refresh":
		d.Render()
	case "help":
		_, err := io.WriteString(d.out, Help)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	return nil
}
