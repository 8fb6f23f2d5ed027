package controller

import "github.com/zhacore/zha/zigdev"

// Persister is the write-through seam the Application Controller calls
// synchronously, in the same critical section as the in-memory
// mutation. A *store.Store implements this interface; Controller works
// with a nil Persister (persistence disabled) so this package has no
// import-time dependency on store.
type Persister interface {
	// UpsertDevice records the current state of d. Called after every
	// lifecycle transition, endpoint/cluster discovery, and attribute
	// update.
	UpsertDevice(d *zigdev.Device)

	// DeleteDevice cascades the removal of ieee through every table
	// that references it.
	DeleteDevice(ieee uint64)

	// UpsertGroupMember records (ieee, endpoint) as a member of groupID,
	// creating the group row if it does not already exist.
	UpsertGroupMember(groupID uint16, name string, ieee uint64, endpoint byte)

	// RemoveGroupMember deletes one group membership row.
	RemoveGroupMember(groupID uint16, ieee uint64, endpoint byte)

	// DeleteGroup removes a group row once it has no members left.
	DeleteGroup(groupID uint16)

	// SaveBackup persists a new NetworkBackup row.
	SaveBackup(blob []byte)
}
