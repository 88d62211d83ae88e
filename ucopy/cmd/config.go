package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the subcommands.
type Config struct {
	Log2PageSize   uint64
	MemoryCapacity uint64
	RecordDB       string
	MonitorPort    int
}

// DefaultConfig returns 4 KiB pages, 16 MiB of memory, no recording, and a
// random monitor port.
func DefaultConfig() Config {
	return Config{
		Log2PageSize:   12,
		MemoryCapacity: 1 << 24,
	}
}

// LoadConfig reads the configuration from the environment and the given env
// files. Variables already set in the environment win over the files. With no
// files, .env is read if it exists.
func LoadConfig(files ...string) (Config, error) {
	config := DefaultConfig()

	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}

	fileValues := map[string]string{}
	if len(files) > 0 {
		var err error

		fileValues, err = godotenv.Read(files...)
		if err != nil {
			return config, err
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}

		v, ok := fileValues[key]

		return v, ok
	}

	if v, ok := lookup("UCOPY_LOG2_PAGE_SIZE"); ok {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return config, fmt.Errorf("UCOPY_LOG2_PAGE_SIZE: %w", err)
		}

		config.Log2PageSize = n
	}

	if v, ok := lookup("UCOPY_MEMORY_CAPACITY"); ok {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return config, fmt.Errorf("UCOPY_MEMORY_CAPACITY: %w", err)
		}

		config.MemoryCapacity = n
	}

	if v, ok := lookup("UCOPY_RECORD_DB"); ok {
		config.RecordDB = v
	}

	if v, ok := lookup("UCOPY_MONITOR_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return config, fmt.Errorf("UCOPY_MONITOR_PORT: %w", err)
		}

		config.MonitorPort = n
	}

	return config, nil
}

// Validate checks that the configuration describes a usable machine.
func (c Config) Validate() error {
	if c.Log2PageSize < 4 || c.Log2PageSize > 30 {
		return fmt.Errorf("log2 page size %d is out of [4, 30]", c.Log2PageSize)
	}

	if c.MemoryCapacity < 1<<c.Log2PageSize {
		return errors.New("memory is smaller than one page")
	}

	if c.MemoryCapacity%(1<<c.Log2PageSize) != 0 {
		return fmt.Errorf("memory 0x%x is not a whole number of pages",
			c.MemoryCapacity)
	}

	return nil
}
