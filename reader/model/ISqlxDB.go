package model

import (
	"context"
	"database/sql"
)

type ISqlxDB interface {
	GetName() string
	QueryCtx(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Conn(ctx context.Context) (*sql.Conn, error)
	Close()
}
