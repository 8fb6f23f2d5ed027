package zigdev

import "sync"

// Endpoint is an application entity on a device, numbered 1..240 (+242
// for GreenPower). Owned by its Device.
type Endpoint struct {
	inClusters  map[uint16]*Cluster
	outClusters map[uint16]*Cluster
	mu          sync.RWMutex
	ID          byte
	ProfileID   uint16
	DeviceType  uint16
	Status      Status
}

// NewEndpoint returns an Endpoint with empty cluster sets.
func NewEndpoint(id byte, profileID, deviceType uint16) *Endpoint {
	return &Endpoint{
		ID:          id,
		ProfileID:   profileID,
		DeviceType:  deviceType,
		inClusters:  make(map[uint16]*Cluster),
		outClusters: make(map[uint16]*Cluster),
	}
}

// AddInCluster registers clusterID as one of this endpoint's input
// (server-role) clusters, creating its Cluster state if absent.
func (e *Endpoint) AddInCluster(clusterID uint16) *Cluster {
	return e.addCluster(e.inClusters, clusterID, DirectionIn)
}

// AddOutCluster registers clusterID as one of this endpoint's output
// (client-role) clusters.
func (e *Endpoint) AddOutCluster(clusterID uint16) *Cluster {
	return e.addCluster(e.outClusters, clusterID, DirectionOut)
}

func (e *Endpoint) addCluster(set map[uint16]*Cluster, clusterID uint16, dir ClusterDirection) *Cluster {
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := set[clusterID]; ok {
		return c
	}
	c := NewCluster(clusterID, dir)
	set[clusterID] = c
	return c
}

// InCluster looks up an input cluster by id.
func (e *Endpoint) InCluster(clusterID uint16) (*Cluster, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.inClusters[clusterID]
	return c, ok
}

// OutCluster looks up an output cluster by id.
func (e *Endpoint) OutCluster(clusterID uint16) (*Cluster, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.outClusters[clusterID]
	return c, ok
}

// InClusterIDs returns this endpoint's input cluster ids in no
// particular order (it may differ between calls; only membership
// matters to callers).
func (e *Endpoint) InClusterIDs() []uint16 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]uint16, 0, len(e.inClusters))
	for id := range e.inClusters {
		ids = append(ids, id)
	}
	return ids
}

// OutClusterIDs returns this endpoint's output cluster ids.
func (e *Endpoint) OutClusterIDs() []uint16 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]uint16, 0, len(e.outClusters))
	for id := range e.outClusters {
		ids = append(ids, id)
	}
	return ids
}
