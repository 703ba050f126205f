package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "read a File-Id's live payload to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseFileID(args[0])
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.GetReader(id)
		if err != nil {
			return err
		}
		defer r.Close()

		payload, err := r.ReadAll()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(payload)
		return err
	},
}

var statCmd = &cobra.Command{
	Use:   "stat <id>",
	Short: "print a File-Id's Object Header",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseFileID(args[0])
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		hdr, err := s.GetHeader(id)
		if err != nil {
			return err
		}
		fmt.Printf("name:       %s\n", hdr.Name)
		fmt.Printf("live_size:  %d\n", hdr.LiveSize)
		fmt.Printf("alloc_size: %d\n", hdr.AllocSize)
		fmt.Printf("version:    %d\n", hdr.Version)
		fmt.Printf("timestamp:  %d\n", hdr.Timestamp)
		return nil
	},
}
