package repomanager

import (
	"context"
	"database/sql"

	"github.com/avolkovs/accountd/internal/dbx"
	"github.com/avolkovs/accountd/internal/server/repositories/accounts"
	"github.com/avolkovs/accountd/internal/server/repositories/refreshtokens"
)

// RepositoryManager hands out repositories bound to a *sql.DB or *sql.Tx, so
// services can run the same repository code inside and outside transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
