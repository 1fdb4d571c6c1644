// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/momeni/dbscope/pkg/adapter/config"
	"github.com/momeni/dbscope/pkg/adapter/db/pgxds"
	"github.com/momeni/dbscope/pkg/core/log"
	"github.com/momeni/dbscope/pkg/core/repo"
	"github.com/momeni/dbscope/pkg/core/scope"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the scoped acquisition round trips on a live server",
	Long: `Check connects to the configured PostgreSQL server and walks
through the scoped acquisition protocol once: the pool lifetime is
governed by a lifetime scope, one connection is checked out eagerly
and released, a cursor scope runs a query through a cursor before
releasing its connection, and a transaction scope creates, fills, and
drops a uniquely named scratch table inside a committed transaction.
The DATABASE_URL environment variable, if set, takes precedence over
the database coordinates of the config file.`,
	RunE: check,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config.Load(%q): %w", cfgPath, err)
	}
	url, err := databaseURL(c)
	if err != nil {
		return err
	}
	ls := scope.Lifetime(func(ctx context.Context) (repo.Pool, error) {
		ctx2, cancel := context.WithTimeout(
			ctx, time.Duration(c.Pool.AcquireTimeout),
		)
		defer cancel()
		return pgxds.NewPool(
			ctx2, url, pgxds.WithMaxConns(c.Pool.MaxConns),
		)
	})
	return ls.With(ctx, checkPool)
}

func checkPool(ctx context.Context, p repo.Pool) error {
	// eager style: trigger the acquisition up front
	cs := scope.Acquire(p)
	conn, err := cs.Get(ctx)
	if err != nil {
		return fmt.Errorf("eager connection checkout: %w", err)
	}
	if _, err := conn.Exec(ctx, "SELECT 1"); err != nil {
		if err2 := cs.Exit(ctx, true); err2 != nil {
			return fmt.Errorf("probing connection: %w; %w", err, err2)
		}
		return fmt.Errorf("probing connection: %w", err)
	}
	if err := cs.Exit(ctx, false); err != nil {
		return fmt.Errorf("eager connection release: %w", err)
	}
	log.Info(ctx, "eager connection checkout round trip done")

	if err := scope.Cursor(p).With(ctx, checkCursor); err != nil {
		return fmt.Errorf("cursor scope: %w", err)
	}
	log.Info(ctx, "cursor scope round trip done")

	if err := scope.Acquire(p).With(ctx, checkTx); err != nil {
		return fmt.Errorf("transaction scope: %w", err)
	}
	log.Info(ctx, "transaction scope round trip done")
	return nil
}

func checkCursor(ctx context.Context, cur repo.Cursor) error {
	rows, err := cur.Query(ctx, "SELECT 1")
	if err != nil {
		return fmt.Errorf("querying through cursor: %w", err)
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("empty result set: %w", err)
		}
		return fmt.Errorf("empty result set")
	}
	var one int
	if err := rows.Scan(&one); err != nil {
		return fmt.Errorf("scanning result: %w", err)
	}
	rows.Close()
	log.Debug(ctx, "cursor query result", slog.Int("value", one))
	return rows.Err()
}

func checkTx(ctx context.Context, conn repo.Conn) error {
	table := scratchTableName()
	err := scope.Begin(conn).With(ctx,
		func(ctx context.Context, tx repo.Tx) error {
			if _, err := tx.Exec(
				ctx, "CREATE TABLE "+table+" (id INT NOT NULL)",
			); err != nil {
				return fmt.Errorf("creating scratch table: %w", err)
			}
			n, err := tx.Exec(
				ctx, "INSERT INTO "+table+" (id) VALUES ($1), ($2)",
				1, 2,
			)
			if err != nil {
				return fmt.Errorf("filling scratch table: %w", err)
			}
			if n != 2 {
				return fmt.Errorf("inserted %d rows instead of 2", n)
			}
			return nil
		})
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, "DROP TABLE "+table); err != nil {
		return fmt.Errorf("dropping scratch table: %w", err)
	}
	return nil
}

// scratchTableName returns a uniquely named scratch table, so check
// runs of independent deployments cannot collide on a shared server.
func scratchTableName() string {
	return "dbscope_check_" +
		strings.ReplaceAll(uuid.NewString(), "-", "")
}

// databaseURL resolves the connection URL from the DATABASE_URL
// environment variable, falling back to the config file coordinates.
func databaseURL(c *config.Config) (string, error) {
	if u, found := os.LookupEnv("DATABASE_URL"); found && u != "" {
		return u, nil
	}
	u, err := c.Database.URL()
	if err != nil {
		return "", fmt.Errorf("building database URL: %w", err)
	}
	return u, nil
}
