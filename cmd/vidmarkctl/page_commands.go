package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vidmark/vidmark/internal/message"
	"github.com/vidmark/vidmark/internal/page"
	"github.com/vidmark/vidmark/internal/popup"
	"github.com/vidmark/vidmark/internal/timecode"
	"github.com/vidmark/vidmark/internal/validate"
)

func newPageInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "page-info URL",
		Short: "Open a page in the browser and print its video info",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTab(cmd.Context(), cmd, args[0], func(tab *page.Tab) error {
				mux := message.NewMux()
				page.Register(mux, tab)
				resp := mux.Handle(cmd.Context(), message.Request{
					Type:      message.TypeGetVideoInfo,
					RequestID: uuid.NewString(),
				})
				return writeJSON(cmd, resp)
			})
		},
	}
}

func newSessionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "session URL",
		Short: "Open a video and manage its timestamps interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}
			return ctx.withTab(cmd.Context(), cmd, args[0], func(tab *page.Tab) error {
				session, err := popup.NewController(c, tab).Open(cmd.Context())
				if err != nil {
					return err
				}

				pollCtx, cancel := context.WithCancel(cmd.Context())
				defer cancel()
				go func() { _ = session.Poll(pollCtx, ctx.pollInterval(), func(string) {}) }()

				return runSession(cmd.Context(), session, cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

const sessionHelp = `Commands:
  pin [note]      save the current position
  rm N            delete row N of the list
  seek N          jump to row N
  filter [text]   filter the list (empty clears)
  list            show the list
  help            show this help
  quit            leave`

// runSession reads popup commands from in until quit or EOF. Row numbers
// refer to the list as last shown, filter included.
func runSession(ctx context.Context, s *popup.Session, in io.Reader, out io.Writer) error {
	title := s.Title
	if title == "" {
		title = s.URL
	}
	fmt.Fprintf(out, "%s\n%s\n\n", title, s.Key)

	filter := ""
	rows := s.Rows(filter)
	printRows(out, rows, filter)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "[%s] > ", s.Elapsed())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		verb, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "":
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(out, sessionHelp)
		case "list", "ls":
			if err := s.Refresh(ctx); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
			rows = s.Rows(filter)
			printRows(out, rows, filter)
		case "filter":
			if msg := validate.Filter(rest); msg != "" {
				fmt.Fprintln(out, "error:", msg)
				continue
			}
			filter = rest
			rows = s.Rows(filter)
			printRows(out, rows, filter)
		case "pin":
			saved, err := s.Pin(ctx, rest)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			fmt.Fprintf(out, "Pinned %s\n", timecode.Format(saved.Time))
			rows = s.Rows(filter)
			printRows(out, rows, filter)
		case "rm", "seek":
			row, err := pickRow(rows, rest)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			if verb == "seek" {
				if err := s.Seek(ctx, row); err != nil {
					fmt.Fprintln(out, "error:", err)
				}
				continue
			}
			if err := s.Delete(ctx, row); err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			rows = s.Rows(filter)
			printRows(out, rows, filter)
		default:
			fmt.Fprintf(out, "unknown command %q; type help\n", verb)
		}
	}
}

func pickRow(rows []popup.Row, arg string) (popup.Row, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(rows) {
		return popup.Row{}, fmt.Errorf("row must be between 1 and %d", len(rows))
	}
	return rows[n-1], nil
}

func printRows(out io.Writer, rows []popup.Row, filter string) {
	if len(rows) == 0 {
		fmt.Fprintln(out, emptyListMessage(filter != ""))
		return
	}
	for i, row := range rows {
		fmt.Fprintf(out, "%3d  %8s  %s\n", i+1, row.Time, row.DisplayNote())
	}
}
