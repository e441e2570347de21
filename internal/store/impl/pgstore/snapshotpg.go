package pgstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/phuslu/log"
)

// PgSnapshotStore keeps rendered canvas snapshots in a table, one row per
// snapshot.
type PgSnapshotStore struct {
	db  *pgxpool.Pool
	log log.Logger
}

func NewSnapshotStore(db *pgxpool.Pool) *PgSnapshotStore {
	m := PgSnapshotStore{}
	m.db = db
	m.log = log.DefaultLogger
	m.log.Context = log.NewContext(nil).Str("module", "snapshot_store").Value()
	return &m
}

func (st *PgSnapshotStore) SaveSnapshot(data []byte, t time.Time) (int64, error) {
	var id int64
	err := st.db.QueryRow(context.Background(),
		`INSERT INTO canvas_snapshot (image, created_time) VALUES ($1,$2) RETURNING id`, data, t).Scan(&id)
	if err != nil {
		st.log.Error().Err(err).Msg("error saving snapshot")
		return 0, err
	}
	return id, nil
}

func (st *PgSnapshotStore) GetSnapshot(id int64) ([]byte, error) {
	var data []byte
	err := st.db.QueryRow(context.Background(),
		`SELECT image FROM canvas_snapshot WHERE id = $1`, id).Scan(&data)
	if err != nil {
		return nil, err
	}
	return data, nil
}
