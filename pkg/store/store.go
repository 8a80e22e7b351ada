// Package store implements the run journal, a bbolt database recording every
// run of a script: its source name, outcome and the filesystem operations it
// performed.
package store

import (
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"src.fsl.sh/pkg/logutil"
	. "src.fsl.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

const bucketRun = "run"

// dbTimeout is how long to wait for a lock held by another process.
const dbTimeout = time.Second

// DBStore is the permanent storage backend for the journal.
type DBStore interface {
	Store
	Close() error
}

var initDB = map[string](func(*bolt.Tx) error){}

type dbStore struct {
	db    *bolt.DB
	waits sync.WaitGroup
}

func dbWithDefaultOptions(dbname string) (*bolt.DB, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: dbTimeout})
	logger.Println("opened database", dbname)
	return db, err
}

// NewStore creates a new Store from the given file.
func NewStore(dbname string) (DBStore, error) {
	db, err := dbWithDefaultOptions(dbname)
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new Store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store")
	defer logger.Println("initialized store")
	st := &dbStore{db: db}
	st.waits.Add(1)
	defer st.waits.Done()

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			err := fn(tx)
			if err != nil {
				logger.Println("failed to", name, ":", err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

// Close waits for all outstanding operations to finish, and closes the
// database.
func (s *dbStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.waits.Wait()
	return s.db.Close()
}
