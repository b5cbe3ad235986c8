package model

import (
	"context"
)

// IDBRegistry hands out ClickHouse sessions for the configured nodes.
type IDBRegistry interface {
	GetDB(ctx context.Context) (*DataDatabasesMap, error)
	Stop()
	Ping() error
}
