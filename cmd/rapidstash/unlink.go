package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var unlinkCmd = &cobra.Command{
	Use:   "unlink <id>",
	Short: "remove a File-Id's object, compacting the id space",
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

		merged, err := s.Unlink(id)
		if err != nil {
			return err
		}
		if merged {
			fmt.Println("unlinked, merged into neighbor")
		} else {
			fmt.Println("unlinked, pushed to free list")
		}
		return nil
	},
}

var mvccCmd = &cobra.Command{
	Use:   "mvcc",
	Short: "print whether the store was opened with MVCC enabled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Println(s.IsMVCCEnabled())
		return nil
	},
}

var checksumCmd = &cobra.Command{
	Use:   "checksum <id>",
	Short: "print the BLAKE3 checksum of a File-Id's live payload",
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

		sum, err := s.Checksum(id)
		if err != nil {
			return err
		}
		fmt.Printf("%x\n", sum)
		return nil
	},
}
