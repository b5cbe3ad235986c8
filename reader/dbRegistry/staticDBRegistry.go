package dbRegistry

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/metrico/tracebehavior/reader/model"
)

type staticDBRegistry struct {
	databases    []*model.DataDatabasesMap
	rand         *rand.Rand
	mtx          sync.Mutex
	lastPingTime time.Time
}

var _ model.IDBRegistry = &staticDBRegistry{}

func NewStaticDBRegistry(databases map[string]*model.DataDatabasesMap) model.IDBRegistry {
	res := staticDBRegistry{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, d := range databases {
		res.databases = append(res.databases, d)
	}
	return &res
}

func (s *staticDBRegistry) GetDB(ctx context.Context) (*model.DataDatabasesMap, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	idx := s.rand.Intn(len(s.databases))
	return s.databases[idx], nil
}

func (s *staticDBRegistry) Stop() {
	for _, d := range s.databases {
		d.Session.Close()
	}
}

func (s *staticDBRegistry) Ping() error {
	s.mtx.Lock()
	last := s.lastPingTime
	s.mtx.Unlock()
	if last.Add(time.Second * 30).After(time.Now()) {
		return nil
	}
	for _, v := range s.databases {
		err := func(db model.ISqlxDB) error {
			to, cancel := context.WithTimeout(context.Background(), time.Second*30)
			defer cancel()
			conn, err := db.Conn(to)
			if err != nil {
				return err
			}
			defer conn.Close()
			return conn.PingContext(to)
		}(v.Session)
		if err != nil {
			return err
		}
	}
	s.mtx.Lock()
	s.lastPingTime = time.Now()
	s.mtx.Unlock()
	return nil
}
