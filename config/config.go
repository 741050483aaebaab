package config

import (
	"fmt"
	"net"
	"strconv"
)

const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 8080
	DefaultWorkerCount = 16
	DefaultRoot        = "www"

	// Queue slots per worker; slow workers throttle the accept loop once
	// workers*backlogPerWorker connections are waiting.
	backlogPerWorker = 8
)

// Config holds the server settings. It is a plain value and must not be
// mutated after the server is constructed from it.
type Config struct {
	Host        string
	Port        int
	WorkerCount int
	Root        string
}

func Default() Config {
	return Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		WorkerCount: DefaultWorkerCount,
		Root:        DefaultRoot,
	}
}

// Backlog is the capacity of the connection queue, derived from the worker
// count rather than configured directly.
func (c Config) Backlog() int {
	return c.WorkerCount * backlogPerWorker
}

// Addr returns the listen address in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("config: worker count must be positive, got %d", c.WorkerCount)
	}
	if c.Root == "" {
		return fmt.Errorf("config: document root must not be empty")
	}
	return nil
}
