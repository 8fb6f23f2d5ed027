package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zhacore/zha/zhalog"
	"github.com/zhacore/zha/zigdev"
)

// Option configures a Store at construction time.
type Option func(*Store)

// WithLogger overrides the store's logger (default zhalog.Noop()).
func WithLogger(l zhalog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithQuietWindow overrides the write-through coalescing window
// (default DefaultQuietWindow).
func WithQuietWindow(d time.Duration) Option {
	return func(s *Store) { s.queue.window = d }
}

// Store is the Persistence Engine: a migrated SQLite database plus the
// write-through coalescing queue in front of it. It implements
// controller.Persister without importing controller.
type Store struct {
	db    *DB
	log   zhalog.Logger
	queue *writeQueue
}

// Open opens (creating if necessary) the database at path, migrates it
// to currentSchemaVersion, and returns a ready Store. An empty path
// opens the process-wide shared-cache in-memory database, used by tests.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, log: zhalog.Noop()}
	s.queue = newWriteQueue(DefaultQuietWindow, func() { s.flush(context.Background()) })
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UpsertDevice implements controller.Persister, queuing d's current
// snapshot for the next batched commit.
func (s *Store) UpsertDevice(d *zigdev.Device) { s.queue.enqueueUpsert(d) }

// DeleteDevice implements controller.Persister.
func (s *Store) DeleteDevice(ieee uint64) { s.queue.enqueueDelete(ieee) }

// UpsertGroupMember implements controller.Persister.
func (s *Store) UpsertGroupMember(groupID uint16, name string, ieee uint64, endpoint byte) {
	s.queue.enqueueGroupAdd(groupID, name, ieee, endpoint)
}

// RemoveGroupMember implements controller.Persister.
func (s *Store) RemoveGroupMember(groupID uint16, ieee uint64, endpoint byte) {
	s.queue.enqueueGroupRemove(groupID, ieee, endpoint)
}

// DeleteGroup implements controller.Persister.
func (s *Store) DeleteGroup(groupID uint16) { s.queue.enqueueGroupDelete(groupID) }

// flush commits every pending mutation in one transaction. Errors are
// logged rather than returned since flush runs off a timer with no
// caller to propagate to; Flush and Close log them the same way, and
// SaveBackup likewise logs its own commit errors.
func (s *Store) flush(ctx context.Context) {
	upserts, deletes, groupAdds, groupRemoves, groupDeletes := s.queue.drain()
	if len(upserts) == 0 && len(deletes) == 0 && len(groupAdds) == 0 && len(groupRemoves) == 0 && len(groupDeletes) == 0 {
		return
	}

	err := s.db.Tx(ctx, func(tx *sql.Tx) error {
		for _, d := range upserts {
			if err := upsertDeviceTx(ctx, tx, d); err != nil {
				return err
			}
		}
		for ieee := range deletes {
			if err := deleteDeviceTx(ctx, tx, ieee); err != nil {
				return err
			}
		}
		for key, name := range groupAdds {
			if err := upsertGroupMemberTx(ctx, tx, key, name); err != nil {
				return err
			}
		}
		for key := range groupRemoves {
			if err := deleteGroupMemberTx(ctx, tx, key); err != nil {
				return err
			}
		}
		for groupID := range groupDeletes {
			if err := deleteGroupTx(ctx, tx, groupID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Errorf("store: batched commit failed: %v", err)
	}
}

// SaveBackup implements controller.Persister. Unlike device/group
// mutations, a NetworkBackup row is an explicit, append-only action
// rather than a continuous write-through target, so it commits
// immediately instead of joining the quiet-window queue.
func (s *Store) SaveBackup(blob []byte) {
	if err := s.saveBackup(context.Background(), blob); err != nil {
		s.log.Errorf("store: save backup failed: %v", err)
	}
}

// Flush forces any pending write-through batch to commit immediately,
// bypassing the quiet window. Exposed for callers that need a
// synchronization point (tests, an explicit "save now" command).
func (s *Store) Flush(ctx context.Context) {
	s.queue.stop()
	s.flush(ctx)
}

// Close flushes any pending writes and releases the database handle.
func (s *Store) Close(ctx context.Context) error {
	s.queue.stop()
	s.flush(ctx)
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrPersistenceBackendFailed, err)
	}
	return nil
}

// Load reads the entire device tree into memory in topological order
// (devices, then endpoints, then clusters), then the group table.
func (s *Store) Load(ctx context.Context) (map[uint64]*zigdev.Device, []GroupRecord, error) {
	devices, err := loadDevices(ctx, s.db)
	if err != nil {
		return nil, nil, err
	}
	groups, err := loadGroups(ctx, s.db)
	if err != nil {
		return nil, nil, err
	}
	return devices, groups, nil
}

func upsertGroupMemberTx(ctx context.Context, tx *sql.Tx, key groupMemberKey, name string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (group_id, name) VALUES (?, ?)
		ON CONFLICT(group_id) DO NOTHING
	`, tableGroups), key.groupID, name); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (group_id, device_ieee, endpoint_id) VALUES (?, ?, ?)
		ON CONFLICT(group_id, device_ieee, endpoint_id) DO NOTHING
	`, tableGroupMembers), key.groupID, ieeeToInt64(key.ieee), key.endpoint)
	return err
}

func deleteGroupMemberTx(ctx context.Context, tx *sql.Tx, key groupMemberKey) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s WHERE group_id = ? AND device_ieee = ? AND endpoint_id = ?
	`, tableGroupMembers), key.groupID, ieeeToInt64(key.ieee), key.endpoint)
	return err
}

func deleteGroupTx(ctx context.Context, tx *sql.Tx, groupID uint16) error {
	_, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE group_id = ?`, tableGroups), groupID)
	return err
}

// GroupRecord is one row of Load's group table snapshot.
type GroupRecord struct {
	Name    string
	ID      uint16
	Members []EndpointRefRecord
}

// EndpointRefRecord is one (device, endpoint) composite key member of
// a GroupRecord.
type EndpointRefRecord struct {
	IEEEAddress uint64
	Endpoint    byte
}

func loadGroups(ctx context.Context, db *DB) ([]GroupRecord, error) {
	groupRows, err := db.QueryContext(ctx, `SELECT group_id, name FROM groups`)
	if err != nil {
		return nil, fmt.Errorf("%w: load groups: %v", ErrPersistenceBackendFailed, err)
	}
	defer groupRows.Close()

	byID := make(map[uint16]*GroupRecord)
	var order []uint16
	for groupRows.Next() {
		var id uint16
		var name string
		if err := groupRows.Scan(&id, &name); err != nil {
			return nil, err
		}
		byID[id] = &GroupRecord{ID: id, Name: name}
		order = append(order, id)
	}
	if err := groupRows.Err(); err != nil {
		return nil, err
	}

	memberRows, err := db.QueryContext(ctx, `SELECT group_id, device_ieee, endpoint_id FROM group_members`)
	if err != nil {
		return nil, fmt.Errorf("%w: load group_members: %v", ErrPersistenceBackendFailed, err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var groupID uint16
		var ieeeRaw int64
		var endpoint byte
		if err := memberRows.Scan(&groupID, &ieeeRaw, &endpoint); err != nil {
			return nil, err
		}
		g, ok := byID[groupID]
		if !ok {
			continue
		}
		g.Members = append(g.Members, EndpointRefRecord{IEEEAddress: int64ToIEEE(ieeeRaw), Endpoint: endpoint})
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}

	out := make([]GroupRecord, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}
