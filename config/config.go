// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/tochemey/actorwire/internal/validation"
)

// EnvPrefix is the prefix of every environment variable read by FromEnv and Load.
const EnvPrefix = "ACTORWIRE_"

// Layout names
const (
	LayoutInner = "inner"
	LayoutOuter = "outer"
)

// Compression names
const (
	CompressionNone   = "none"
	CompressionZstd   = "zstd"
	CompressionBrotli = "brotli"
)

const (
	// MaxPacketSize is the largest frame the length prefix can describe.
	MaxPacketSize = 65535
	innerMinSize  = 10
	outerMinSize  = 2
)

// Config holds the settings of a process.
type Config struct {
	// Name identifies the process in logs and metrics.
	Name string `yaml:"name" env:"NAME"`
	// Process is the process part of every ActorID minted locally.
	Process uint16 `yaml:"process" env:"PROCESS"`
	// ListenAddress is the host:port to accept connections on. Empty means
	// the process only dials out.
	ListenAddress string `yaml:"listenAddress" env:"LISTEN_ADDRESS"`
	// MaxConnections caps concurrently accepted connections. Zero disables the cap.
	MaxConnections int `yaml:"maxConnections" env:"MAX_CONNECTIONS"`
	// Layout is either "inner" (actor id on the wire) or "outer".
	Layout string `yaml:"layout" env:"LAYOUT"`
	// MaxPacketSize is the largest accepted frame, length prefix excluded.
	MaxPacketSize int `yaml:"maxPacketSize" env:"MAX_PACKET_SIZE"`
	// SendHighWater is the number of pending outbound bytes above which senders wait.
	SendHighWater int `yaml:"sendHighWater" env:"SEND_HIGH_WATER"`
	// Compression wraps every connection: "none", "zstd" or "brotli".
	Compression string `yaml:"compression" env:"COMPRESSION"`
	// TickInterval is the period of the owner loop.
	TickInterval time.Duration `yaml:"tickInterval" env:"TICK_INTERVAL"`
	// RequestTimeout bounds how long Call waits for a response.
	RequestTimeout time.Duration `yaml:"requestTimeout" env:"REQUEST_TIMEOUT"`
	// LockTimeout bounds how long a message waits for its mailbox turn.
	LockTimeout time.Duration `yaml:"lockTimeout" env:"LOCK_TIMEOUT"`
	// LockWarnLevel logs a warning once a mailbox queue reaches that depth.
	LockWarnLevel int `yaml:"lockWarnLevel" env:"LOCK_WARN_LEVEL"`
	// IdleTimeout closes channels that received nothing for that long. Zero disables it.
	IdleTimeout time.Duration `yaml:"idleTimeout" env:"IDLE_TIMEOUT"`
	// DialTimeout bounds a single connection attempt.
	DialTimeout time.Duration `yaml:"dialTimeout" env:"DIAL_TIMEOUT"`
	// DialRetries is the number of attempts made by Connect.
	DialRetries int `yaml:"dialRetries" env:"DIAL_RETRIES"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel" env:"LOG_LEVEL"`
}

// Default returns a Config with every field set to its default value.
func Default() *Config {
	return &Config{
		Name:           "actorwire",
		Process:        1,
		Layout:         LayoutInner,
		MaxPacketSize:  MaxPacketSize,
		SendHighWater:  1 << 20,
		Compression:    CompressionNone,
		TickInterval:   10 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
		LockTimeout:    10 * time.Second,
		LockWarnLevel:  128,
		DialTimeout:    5 * time.Second,
		DialRetries:    3,
		LogLevel:       "info",
	}
}

// Load reads the YAML file at path on top of the defaults, then applies the
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		bytea, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file (%s): %w", path, err)
		}

		if err := yaml.Unmarshal(bytea, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file (%s): %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv returns the defaults overridden by the environment.
func FromEnv() (*Config, error) {
	return Load("")
}

// MinPacketSize is the smallest frame body allowed by the layout.
func (c *Config) MinPacketSize() int {
	if c.Layout == LayoutOuter {
		return outerMinSize
	}
	return innerMinSize
}

// Validate checks the configuration and returns every violation found.
func (c *Config) Validate() error {
	chain := validation.New().
		AddAssertion(c.Name != "", "the [name] is required").
		AddAssertion(slices.Contains([]string{LayoutInner, LayoutOuter}, c.Layout),
			fmt.Sprintf("the [layout] must be %q or %q", LayoutInner, LayoutOuter)).
		AddAssertion(slices.Contains([]string{CompressionNone, CompressionZstd, CompressionBrotli, ""}, c.Compression),
			fmt.Sprintf("unsupported compression %q", c.Compression)).
		AddValidator(validation.NewRangeValidator("maxPacketSize", c.MaxPacketSize, c.MinPacketSize(), MaxPacketSize)).
		AddValidator(validation.NewPositiveValidator("sendHighWater", c.SendHighWater)).
		AddValidator(validation.NewPositiveValidator("tickInterval", c.TickInterval)).
		AddValidator(validation.NewPositiveValidator("requestTimeout", c.RequestTimeout)).
		AddValidator(validation.NewPositiveValidator("lockTimeout", c.LockTimeout)).
		AddValidator(validation.NewPositiveValidator("dialTimeout", c.DialTimeout)).
		AddValidator(validation.NewRangeValidator("dialRetries", c.DialRetries, 1, 100)).
		AddAssertion(c.IdleTimeout >= 0, "the [idleTimeout] must not be negative").
		AddAssertion(c.MaxConnections >= 0, "the [maxConnections] must not be negative").
		AddAssertion(c.LockWarnLevel >= 0, "the [lockWarnLevel] must not be negative")

	if c.ListenAddress != "" {
		chain.AddValidator(validation.NewTCPAddressValidator(c.ListenAddress).AllowWildcard())
	}

	if err := chain.Validate(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}
