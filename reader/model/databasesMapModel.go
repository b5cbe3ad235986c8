package model

import "github.com/metrico/cloki-config/config"

// DataDatabasesMap is one configured ClickHouse node and its session.
type DataDatabasesMap struct {
	Config  *config.ClokiBaseDataBase
	DSN     string `json:"dsn"`
	Session ISqlxDB
}
