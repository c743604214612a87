package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vidmark/vidmark/internal/popup"
	"github.com/vidmark/vidmark/internal/timecode"
	"github.com/vidmark/vidmark/internal/timestamp"
	"github.com/vidmark/vidmark/internal/validate"
	"github.com/vidmark/vidmark/internal/videokey"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list URL",
		Short: "List the timestamps saved for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if msg := validate.Filter(filter); msg != "" {
				return fmt.Errorf("%s", msg)
			}
			c, err := ctx.client()
			if err != nil {
				return err
			}
			records, err := c.Get(cmd.Context(), videokey.Derive(args[0]))
			if err != nil {
				return err
			}

			rows := popup.FilterRows(records, filter)
			if ctx.flags.json {
				return writeJSON(cmd, rowRecords(rows))
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), emptyListMessage(len(records) > 0 && filter != ""))
				return nil
			}
			writeRows(cmd.OutOrStdout(), []string{"#", "Time", "Note", "ID"}, tableRows(rows), []columnAlignment{alignRight, alignRight})
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Only show timestamps whose note or time contains this text")
	return cmd
}

func newPinCommand(ctx *commandContext) *cobra.Command {
	var at string
	var note string

	cmd := &cobra.Command{
		Use:   "pin URL",
		Short: "Save a timestamp for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := timecode.Parse(at)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			c, err := ctx.client()
			if err != nil {
				return err
			}
			saved, err := c.Save(cmd.Context(), videokey.Derive(args[0]), timestamp.Record{Time: seconds, Note: note})
			if err != nil {
				return err
			}
			if ctx.flags.json {
				return writeJSON(cmd, saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s (%s)\n", timecode.Format(saved.Time), saved.Identity())
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Position in the video, as SS, M:SS or H:MM:SS")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Note to keep with the timestamp")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "rm URL [ID]",
		Short: "Delete a timestamp by id, or by position with --index",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}
			key := videokey.Derive(args[0])

			switch {
			case len(args) == 2:
				err = c.DeleteByID(cmd.Context(), key, args[1])
			case cmd.Flags().Changed("index"):
				err = c.Delete(cmd.Context(), key, index)
			default:
				return fmt.Errorf("pass an ID or --index")
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "Position in the stored list, starting at 0")
	return cmd
}

func newKeysCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every video that has timestamps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.client()
			if err != nil {
				return err
			}
			keys, err := c.Keys(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.flags.json {
				return writeJSON(cmd, keys)
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func tableRows(rows []popup.Row) [][]string {
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		out = append(out, []string{strconv.Itoa(i + 1), row.Time, row.DisplayNote(), row.Record.Identity()})
	}
	return out
}

func rowRecords(rows []popup.Row) []timestamp.Record {
	out := make([]timestamp.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record)
	}
	return out
}

func emptyListMessage(filtered bool) string {
	if filtered {
		return "No timestamps match the filter"
	}
	return "No timestamps saved yet"
}
