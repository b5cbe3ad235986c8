package dsn

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/metrico/tracebehavior/reader/utils/logger"
)

// StableSqlxDBWrapper reopens the pool after a failed query so that a
// restarted ClickHouse node does not leave broken connections behind.
type StableSqlxDBWrapper struct {
	DB    *sqlx.DB
	mtx   sync.RWMutex
	GetDB func() *sqlx.DB
	Name  string
}

func (s *StableSqlxDBWrapper) QueryCtx(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	res, err := func() (*sql.Rows, error) {
		s.mtx.RLock()
		defer s.mtx.RUnlock()
		return s.DB.QueryContext(ctx, query, args...)
	}()
	if err != nil && ctx.Err() == nil {
		logger.Error("query on ", s.Name, " failed, reconnecting: ", err)
		s.mtx.Lock()
		defer s.mtx.Unlock()
		s.DB.Close()
		s.DB = s.GetDB()
	}
	return res, err
}

func (s *StableSqlxDBWrapper) GetName() string {
	return s.Name
}

func (s *StableSqlxDBWrapper) Conn(ctx context.Context) (*sql.Conn, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.DB.Conn(ctx)
}

func (s *StableSqlxDBWrapper) Close() {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	s.DB.Close()
}
