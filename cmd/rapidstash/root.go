package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rapidstash/rapidstash/logger"
	"github.com/rapidstash/rapidstash/store"
)

var (
	dataPath string
	logLevel string
	mvcc     bool
)

var rootCmd = &cobra.Command{
	Use:   "rapidstash",
	Short: "rapidstash is an embedded, memory-mapped object store",
	Long:  `rapidstash is an embedded, single-process, memory-mapped key-addressed object store.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", getDataPath(), "path to the backing file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", getLogLevel(), "log level: debug, info, warn, error, or silent")
	rootCmd.PersistentFlags().BoolVar(&mvcc, "mvcc", getMVCC(), "open the store with MVCC enabled")

	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(mvccCmd)
	rootCmd.AddCommand(checksumCmd)
}

// Execute is the primary entry point for the rapidstash CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getDataPath() string {
	if p := os.Getenv("RAPIDSTASH_DATA_PATH"); p != "" {
		return p
	}
	return "./rapidstash.dat"
}

func getLogLevel() string {
	if l := os.Getenv("RAPIDSTASH_LOG_LEVEL"); l != "" {
		return l
	}
	return "info"
}

func getMVCC() bool {
	return os.Getenv("RAPIDSTASH_MVCC") == "true"
}

// openStore opens the store at the resolved --data path using the
// resolved --log-level and --mvcc flags. Callers are responsible for
// closing it.
func openStore() (*store.Store, error) {
	var log logger.Logger
	if logLevel == "silent" {
		log = logger.NewNoOp()
	} else {
		log = logger.NewWithLevel(logLevel)
	}

	cfg := store.DefaultConfig()
	cfg.MVCCEnabled = mvcc
	cfg.Logger = log

	return store.Open(dataPath, cfg)
}
