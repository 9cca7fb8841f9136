package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/taskmanager/internal/dbx"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/labels"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/taskstatuses"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a handle, so the same code
// path serves plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) ([]int64, error)
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	TaskStatuses(db dbx.DBTX) taskstatuses.Repository
	Labels(db dbx.DBTX) labels.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
