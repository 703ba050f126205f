package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <name>",
	Short: "resolve a name to its File-Id, creating it if it doesn't exist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		id, err := s.Select(args[0])
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}
