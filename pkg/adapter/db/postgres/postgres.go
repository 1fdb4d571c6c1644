// Copyright (c) 2024-2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package postgres implements the repo collaborator interfaces on top
// of the GORM framework. The pool hands out dedicated *sql.Conn
// instances which are checked out of the database/sql pool underlying
// the *gorm.DB, so a connection acquired through a scope is not
// shared with other users until it is released. Cursors are statement
// handles over such a dedicated connection and transactions wrap the
// *sql.Tx type with an explicit activity flag.
package postgres

import "github.com/momeni/dbscope/pkg/core/repo"

// Compile-time check of the repo collaborator contracts.
var (
	_ repo.Pool   = (*Pool)(nil)
	_ repo.Conn   = (*Conn)(nil)
	_ repo.Cursor = (*Cursor)(nil)
	_ repo.Tx     = (*Tx)(nil)
)
