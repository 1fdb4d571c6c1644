// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config is an adapter which accepts yaml formatted config
// files and exposes the validated settings which are required for
// connecting to a PostgreSQL database and sizing its connection
// pool. The parsed settings are validated with the go-playground
// validator before they are handed to the adapter constructors.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config contains the complete settings of the dbscope command.
type Config struct {
	Database Database `yaml:"database"`
	Pool     Pool     `yaml:"pool"`
}

// Database contains the database connection coordinates.
// The password is kept out of the config file itself; PassFile may
// name a file containing it (trailing newlines are ignored).
type Database struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	Name     string `yaml:"name" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	PassFile string `yaml:"pass-file" validate:"omitempty,file"`
}

// Pool contains the connection pool sizing settings.
type Pool struct {
	MaxConns       int32    `yaml:"max-conns" validate:"min=0"`
	AcquireTimeout Duration `yaml:"acquire-timeout"`
}

// Default returns a Config with the default settings, connecting to
// a local server with at most four pooled connections.
func Default() *Config {
	return &Config{
		Database: Database{
			Host: "127.0.0.1",
			Port: 5432,
		},
		Pool: Pool{
			MaxConns:       4,
			AcquireTimeout: Duration(5 * time.Second),
		},
	}
}

// Load reads, parses, and validates the configuration file at path,
// merging it over the Default settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshalling yaml: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings against their validation tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating configs: %w", err)
	}
	return nil
}

// URL builds the postgres connection URL of the d database, reading
// the password file if one is configured.
func (d *Database) URL() (string, error) {
	u := &url.URL{
		Scheme: "postgres",
		Host:   d.Host + ":" + strconv.Itoa(d.Port),
		Path:   "/" + d.Name,
		User:   url.User(d.User),
	}
	if d.PassFile != "" {
		pass, err := os.ReadFile(d.PassFile)
		if err != nil {
			return "", fmt.Errorf("reading password file: %w", err)
		}
		u.User = url.UserPassword(
			d.User, strings.TrimRight(string(pass), "\r\n"),
		)
	}
	return u.String(), nil
}
