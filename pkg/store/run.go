package store

import (
	"encoding/binary"
	"encoding/json"

	bolt "go.etcd.io/bbolt"
	. "src.fsl.sh/pkg/store/storedefs"
)

func init() {
	initDB["initialize run journal table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRun))
		return err
	}
}

// NextRunSeq returns the next sequence number of the journal.
func (s *dbStore) NextRunSeq() (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		seq = b.Sequence() + 1
		return nil
	})
	return int(seq), err
}

// AddRun adds a new run to the journal. The Seq field of run is ignored and
// the assigned sequence number is returned.
func (s *dbStore) AddRun(run Run) (int, error) {
	data, err := json.Marshal(run)
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), data)
	})
	return int(seq), err
}

// DelRun deletes a journal entry with the given sequence number.
func (s *dbStore) DelRun(seq int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		return b.Delete(marshalSeq(uint64(seq)))
	})
}

// Run queries the journal entry with the specified sequence number.
func (s *dbStore) Run(seq int) (Run, error) {
	var run Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		v := b.Get(marshalSeq(uint64(seq)))
		if v == nil {
			return ErrNoMatchingRun
		}
		var err error
		run, err = unmarshalRun(seq, v)
		return err
	})
	return run, err
}

// IterateRuns iterates all the runs in the specified range, and calls the
// callback with each run sequentially.
func (s *dbStore) IterateRuns(from, upto int, f func(Run)) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		c := b.Cursor()
		for k, v := c.Seek(marshalSeq(uint64(from))); k != nil && unmarshalSeq(k) < uint64(upto); k, v = c.Next() {
			run, err := unmarshalRun(int(unmarshalSeq(k)), v)
			if err != nil {
				return err
			}
			f(run)
		}
		return nil
	})
}

// RunsWithSeq returns all runs within the specified range.
func (s *dbStore) RunsWithSeq(from, upto int) ([]Run, error) {
	var runs []Run
	err := s.IterateRuns(from, upto, func(run Run) {
		runs = append(runs, run)
	})
	return runs, err
}

// LastRun finds the most recent run of the given script. An empty script
// matches any run.
func (s *dbStore) LastRun(script string) (Run, error) {
	var run Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRun))
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			r, err := unmarshalRun(int(unmarshalSeq(k)), v)
			if err != nil {
				return err
			}
			if script == "" || r.Script == script {
				run = r
				return nil
			}
		}
		return ErrNoMatchingRun
	})
	return run, err
}

func unmarshalRun(seq int, data []byte) (Run, error) {
	var run Run
	err := json.Unmarshal(data, &run)
	run.Seq = seq
	return run, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
