package room

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andrewbenington/group-mix/dialect"
	"github.com/andrewbenington/group-mix/errs"
	"github.com/andrewbenington/group-mix/lock"
)

// Store is the durable room ledger. Appends for one room are serialized by
// the locker and committed in a single transaction; the (room_id, seq) key
// rejects a second process that raced past the lock.
type Store struct {
	db      *sql.DB
	dialect dialect.Dialect
	locker  lock.Locker
	now     func() time.Time
}

func NewStore(db *sql.DB, d dialect.Dialect, locker lock.Locker) *Store {
	return &Store{
		db:      db,
		dialect: d,
		locker:  locker,
		now:     time.Now,
	}
}

func lockKey(id ID) string {
	return "room:" + id.String()
}

func (s *Store) CreateRoom(ctx context.Context, solo bool) (ID, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	id := NewID()
	_, err := s.db.ExecContext(ctx,
		s.dialect.Rebind(`INSERT INTO rooms (id, solo, created_at) VALUES (?, ?, ?)`),
		id.String(), solo, s.now().Unix(),
	)
	if err != nil {
		return "", errs.StoreIO("create room", err)
	}
	return id, nil
}

func (s *Store) AppendContribution(ctx context.Context, id ID, contribution Contribution) (err error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	unlock, err := s.locker.Lock(ctx, lockKey(id))
	if err != nil {
		return errs.StoreIO("lock room", err)
	}
	defer unlock()

	tracks := contribution.Tracks
	if tracks == nil {
		tracks = []string{}
	}
	encoded, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("encode tracks: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.StoreIO("begin append", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		s.dialect.Rebind(`INSERT INTO rooms (id, solo, created_at) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`),
		id.String(), false, s.now().Unix(),
	)
	if err != nil {
		return errs.StoreIO("ensure room", err)
	}

	var seq int64
	err = tx.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT COALESCE(MAX(seq), 0) FROM contributions WHERE room_id = ?`),
		id.String(),
	).Scan(&seq)
	if err != nil {
		return errs.StoreIO("read sequence", err)
	}

	_, err = tx.ExecContext(ctx,
		s.dialect.Rebind(`INSERT INTO contributions (room_id, seq, member_name, tracks) VALUES (?, ?, ?, ?)`),
		id.String(), seq+1, contribution.User, string(encoded),
	)
	if err != nil {
		return errs.StoreIO("insert contribution", err)
	}

	if err = tx.Commit(); err != nil {
		return errs.StoreIO("commit append", err)
	}
	return nil
}

// GetRoom returns the room's contributions in append order. Unknown rooms
// are empty.
func (s *Store) GetRoom(ctx context.Context, id ID) ([]Contribution, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		s.dialect.Rebind(`SELECT member_name, tracks FROM contributions WHERE room_id = ? ORDER BY seq`),
		id.String(),
	)
	if err != nil {
		return nil, errs.StoreIO("read room", err)
	}
	defer rows.Close()

	contributions := []Contribution{}
	for rows.Next() {
		var c Contribution
		var encoded string
		if err := rows.Scan(&c.User, &encoded); err != nil {
			return nil, errs.StoreIO("scan contribution", err)
		}
		if err := json.Unmarshal([]byte(encoded), &c.Tracks); err != nil {
			return nil, errs.StoreIO("decode tracks", err)
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.StoreIO("read room", err)
	}
	return contributions, nil
}

// Get returns room metadata and contributions. Unknown rooms come back as an
// empty group room.
func (s *Store) Get(ctx context.Context, id ID) (Room, error) {
	r := Room{ID: id, Contributions: []Contribution{}}

	var created int64
	var merged sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT solo, created_at, merged_at FROM rooms WHERE id = ?`),
		id.String(),
	).Scan(&r.Solo, &created, &merged)
	if errors.Is(err, sql.ErrNoRows) {
		return r, nil
	}
	if err != nil {
		return Room{}, errs.StoreIO("read room", err)
	}
	r.Created = time.Unix(created, 0)
	if merged.Valid {
		mergedAt := time.Unix(merged.Int64, 0)
		r.MergedAt = &mergedAt
	}

	r.Contributions, err = s.GetRoom(ctx, id)
	if err != nil {
		return Room{}, err
	}
	return r, nil
}

func (s *Store) MarkMerged(ctx context.Context, id ID, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		s.dialect.Rebind(`UPDATE rooms SET merged_at = ? WHERE id = ?`),
		at.Unix(), id.String(),
	)
	return errs.StoreIO("mark merged", err)
}

func (s *Store) Delete(ctx context.Context, id ID) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	unlock, err := s.locker.Lock(ctx, lockKey(id))
	if err != nil {
		return errs.StoreIO("lock room", err)
	}
	defer unlock()

	return s.deleteRooms(ctx, []ID{id})
}

// PruneBefore deletes rooms created before cutoff and returns their ids.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) ([]ID, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.Rebind(`SELECT id FROM rooms WHERE created_at < ?`),
		cutoff.Unix(),
	)
	if err != nil {
		return nil, errs.StoreIO("list stale rooms", err)
	}
	ids := []ID{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, errs.StoreIO("scan stale room", err)
		}
		ids = append(ids, ID(id))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errs.StoreIO("list stale rooms", err)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	if err := s.deleteRooms(ctx, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Store) deleteRooms(ctx context.Context, ids []ID) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.StoreIO("begin delete", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM contributions WHERE room_id = ?`), id.String()); err != nil {
			return errs.StoreIO("delete contributions", err)
		}
		if _, err = tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM rooms WHERE id = ?`), id.String()); err != nil {
			return errs.StoreIO("delete room", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errs.StoreIO("commit delete", err)
	}
	return nil
}
