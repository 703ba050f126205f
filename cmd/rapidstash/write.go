package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rapidstash/rapidstash/store"
)

var writeValue string

var writeCmd = &cobra.Command{
	Use:   "write <id>",
	Short: "write a payload to a File-Id, reading from --value or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseFileID(args[0])
		if err != nil {
			return err
		}

		var payload []byte
		if writeValue != "" {
			payload = []byte(writeValue)
		} else {
			payload, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		w, err := s.GetWriter(id)
		if err != nil {
			return err
		}
		defer w.Close()

		if err := w.Truncate(0); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
		fmt.Printf("wrote %d bytes to file %d\n", len(payload), id)
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeValue, "value", "", "payload to write (defaults to stdin)")
}

func parseFileID(raw string) (store.FileID, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file id %q: %w", raw, err)
	}
	return store.FileID(n), nil
}
