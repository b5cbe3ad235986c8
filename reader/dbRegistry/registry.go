package dbRegistry

import (
	"crypto/tls"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	clconfig "github.com/metrico/cloki-config/config"
	"github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/model"
	"github.com/metrico/tracebehavior/reader/utils/dsn"
	"github.com/metrico/tracebehavior/reader/utils/logger"
)

var Registry model.IDBRegistry
var DataDBSession []model.ISqlxDB
var DatabaseNodeMap []model.DataDatabasesMap

func Init() {
	Registry = InitStaticRegistry()
}

func InitStaticRegistry() model.IDBRegistry {
	initDataDBSession()
	if len(DataDBSession) == 0 {
		panic("We don't have any active DB session configured. Please check your config")
	}
	dbMap := map[string]*model.DataDatabasesMap{}
	for i := range DatabaseNodeMap {
		node := DatabaseNodeMap[i]
		node.Session = DataDBSession[i]
		dbMap[node.Config.Node] = &node
	}
	return NewStaticDBRegistry(dbMap)
}

func connectMessage(dbObject *clconfig.ClokiBaseDataBase) string {
	stream := jsoniter.ConfigFastest.BorrowStream(nil)
	defer jsoniter.ConfigFastest.ReturnStream(stream)
	stream.WriteRaw("Connecting to [")
	stream.WriteRaw(dbObject.Host)
	stream.WriteRaw(", ")
	stream.WriteRaw(dbObject.User)
	stream.WriteRaw(", ")
	stream.WriteRaw(dbObject.Name)
	stream.WriteRaw(", ")
	stream.WriteRaw(dbObject.Node)
	stream.WriteRaw(", ")
	stream.WriteInt64(int64(dbObject.Port))
	stream.WriteRaw("]")
	return string(stream.Buffer())
}

func openDB(dbObject *clconfig.ClokiBaseDataBase) *sqlx.DB {
	opts := &clickhouse.Options{
		Addr: []string{dbObject.Host + ":" + strconv.FormatUint(uint64(dbObject.Port), 10)},
		Auth: clickhouse.Auth{
			Database: dbObject.Name,
			Username: dbObject.User,
			Password: dbObject.Password,
		},
		Debug: dbObject.Debug,
	}
	if dbObject.ReadTimeout > 0 {
		opts.ReadTimeout = time.Duration(dbObject.ReadTimeout) * time.Second
	}
	if dbObject.Secure {
		opts.TLS = &tls.Config{
			InsecureSkipVerify: true,
		}
	}
	conn := clickhouse.OpenDB(opts)
	db := sqlx.NewDb(conn, "clickhouse")
	db.SetMaxOpenConns(dbObject.MaxOpenConn)
	db.SetMaxIdleConns(dbObject.MaxIdleConn)
	db.SetConnMaxLifetime(time.Minute * 10)
	return db
}

func initDataDBSession() {
	dbMap := []model.ISqlxDB{}
	dbNodeMap := []model.DataDatabasesMap{}

	for i := range config.Cloki.Setting.DATABASE_DATA {
		dbObject := config.Cloki.Setting.DATABASE_DATA[i]
		logger.Info(connectMessage(&dbObject))

		dbMap = append(dbMap, &dsn.StableSqlxDBWrapper{
			DB:    openDB(&dbObject),
			GetDB: func() *sqlx.DB { return openDB(&dbObject) },
			Name:  dbObject.Node,
		})

		chDsn := "n-clickhouse://"
		if dbObject.ClusterName != "" {
			chDsn = "c-clickhouse://"
		}
		chDsn += dbObject.User + "@" + dbObject.Host + ":" +
			strconv.FormatInt(int64(dbObject.Port), 10) + "/" + dbObject.Name
		if dbObject.Secure {
			chDsn += "?secure=true"
		}

		dbNodeMap = append(dbNodeMap, model.DataDatabasesMap{
			Config: &dbObject,
			DSN:    chDsn,
		})

		logger.Info("*** Database Config Session created for node ", dbObject.Node, " ***")
	}

	DataDBSession = dbMap
	DatabaseNodeMap = dbNodeMap
}
