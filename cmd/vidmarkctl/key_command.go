package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vidmark/vidmark/internal/videokey"
)

func newKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "key URL",
		Short:       "Show the storage key a video URL maps to",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Key:        %s\n", videokey.Derive(args[0]))
			fmt.Fprintf(out, "Watch page: %s\n", yesNo(videokey.IsWatchPage(args[0])))
			return nil
		},
	}
}
