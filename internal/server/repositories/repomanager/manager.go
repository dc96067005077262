package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/devsync/internal/dbx"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/developers"
	"github.com/dmitrijs2005/devsync/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Developers(db dbx.DBTX) developers.Repository
}
