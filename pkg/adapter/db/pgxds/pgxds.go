// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pgxds implements the repo collaborator interfaces on top of
// the pgx driver and its pgxpool connection pool. In contrast with
// the sibling gorm-based postgres package, this adapter talks the
// PostgreSQL wire protocol through pgx directly and maps the blocking
// pgxpool.Pool.Close call onto the Close/WaitClosed split of the
// repo.Pool interface.
package pgxds

import "github.com/momeni/dbscope/pkg/core/repo"

// Compile-time check of the repo collaborator contracts.
var (
	_ repo.Pool   = (*Pool)(nil)
	_ repo.Conn   = (*Conn)(nil)
	_ repo.Cursor = (*Cursor)(nil)
	_ repo.Tx     = (*Tx)(nil)
)
