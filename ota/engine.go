package ota

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zhacore/zha/zhalog"
)

// DefaultMaxBlockSize is used when a device's Image-Block-Request names
// a max_size of zero or larger than this, keeping individual
// Image-Block-Response payloads within a single APS frame's practical
// budget.
const DefaultMaxBlockSize = 64

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the engine's logger (default zhalog.Noop()).
func WithLogger(l zhalog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithCache overrides the engine's image cache (default an unbounded
// StagedImageCache).
func WithCache(c *StagedImageCache) Option {
	return func(e *Engine) { e.cache = c }
}

// Engine is the OTA Engine: provider set, image cache, and per-device
// transfer state machines, playing the ZCL OTA Upgrade server role.
type Engine struct {
	providers []Provider
	cache     *StagedImageCache
	log       zhalog.Logger

	mu        sync.Mutex
	transfers map[uint64]*transfer
}

// New returns an Engine serving images from providers.
func New(providers []Provider, opts ...Option) *Engine {
	e := &Engine{
		providers: providers,
		cache:     NewStagedImageCache(0),
		log:       zhalog.Noop(),
		transfers: make(map[uint64]*transfer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RefreshProviders re-fetches every provider's index. Errors from
// individual providers are logged, not returned, so one unreachable
// vendor feed does not block queries against the others.
func (e *Engine) RefreshProviders(ctx context.Context) {
	for _, p := range e.providers {
		if err := p.Refresh(ctx); err != nil {
			e.log.Warnf("ota: refresh %s: %v", p.Name(), err)
		}
	}
}

// candidate pairs a matched image with the provider priority that
// offered it, for the tie-break step.
type candidate struct {
	image    *Image
	priority int
}

// QueryNextImage answers a device's Query-Next-Image-Request: it asks
// every provider for their best match and applies the tie-break
// (highest file_version, ties broken by provider priority). A nil,
// ErrNoImageAvailable result means "no image available" should be
// reported back to the device.
func (e *Engine) QueryNextImage(ctx context.Context, ieee uint64, manufacturerCode, imageType uint16, currentFileVersion uint32, minHW, maxHW uint16) (*Image, error) {
	var candidates []candidate
	for _, p := range e.providers {
		img, ok, err := p.GetImage(ctx, manufacturerCode, imageType, minHW, maxHW)
		if err != nil {
			e.log.Warnf("ota: %s GetImage: %v", p.Name(), err)
			continue
		}
		if !ok || img.Header.FileVersion <= currentFileVersion {
			continue
		}
		candidates = append(candidates, candidate{image: img, priority: p.Priority()})
	}
	if len(candidates) == 0 {
		return nil, ErrNoImageAvailable
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].image.Header.FileVersion != candidates[j].image.Header.FileVersion {
			return candidates[i].image.Header.FileVersion > candidates[j].image.Header.FileVersion
		}
		return candidates[i].priority > candidates[j].priority
	})
	chosen := candidates[0].image

	// Acquire routes every device upgrading to the same (manufacturer,
	// type, version) through the cache's one shared copy, so a fleet
	// rollout does not hold N independent copies of the same image.
	cached, err := e.cache.Acquire(chosen.Key(), func() (*Image, error) { return chosen, nil })
	if err != nil {
		return nil, err
	}
	data, ok := cached.UpgradeData()
	if !ok {
		e.cache.Release(chosen.Key())
		return nil, fmt.Errorf("%w: image missing upgrade data sub-element", ErrInvalidImage)
	}

	e.mu.Lock()
	if prior, exists := e.transfers[ieee]; exists && prior.state != StateApplied {
		e.mu.Unlock()
		e.cache.Release(prior.image.Key())
		e.mu.Lock()
	}
	e.transfers[ieee] = &transfer{ieee: ieee, image: cached, data: data, state: StateQuerying}
	e.mu.Unlock()

	return cached, nil
}

// ImageBlock answers a device's Image-Block-Request for ieee, returning
// at most maxSize bytes starting at offset. done reports whether this
// block reaches the end of the image.
func (e *Engine) ImageBlock(ctx context.Context, ieee uint64, offset uint32, maxSize byte) (data []byte, done bool, err error) {
	e.mu.Lock()
	t, ok := e.transfers[ieee]
	e.mu.Unlock()
	if !ok {
		return nil, false, ErrUnknownTransfer
	}
	if offset > uint32(len(t.data)) {
		return nil, false, ErrOffsetOutOfRange
	}

	size := int(maxSize)
	if size <= 0 || size > DefaultMaxBlockSize {
		size = DefaultMaxBlockSize
	}
	end := int(offset) + size
	if end > len(t.data) {
		end = len(t.data)
	}
	block := t.data[offset:end]

	e.mu.Lock()
	t.offset = uint32(end)
	t.state = StateDownloading
	e.mu.Unlock()

	return block, end >= len(t.data), nil
}

// UpgradeEnd answers a device's Upgrade-End-Request(status). On
// StatusSuccess it returns the current/upgrade time pair the device
// expects (0, 0 meaning "apply immediately") and marks the transfer
// applied. Any other status leaves the device at its previous firmware
// and the server expects a retry on the device's next
// Query-Next-Image, so the failed transfer is dropped rather than kept
// around.
func (e *Engine) UpgradeEnd(ctx context.Context, ieee uint64, status byte) (currentTime, upgradeTime uint32, applied bool, err error) {
	e.mu.Lock()
	t, ok := e.transfers[ieee]
	if !ok {
		e.mu.Unlock()
		return 0, 0, false, ErrUnknownTransfer
	}
	if status == StatusSuccess {
		t.state = StateApplied
		e.mu.Unlock()
		e.cache.Release(t.image.Key())
		return 0, 0, true, nil
	}

	delete(e.transfers, ieee)
	e.mu.Unlock()
	e.cache.Release(t.image.Key())
	return 0, 0, false, nil
}

// TransferState reports ieee's current position in the upgrade state
// machine, StateIdle if no transfer is tracked.
func (e *Engine) TransferState(ieee uint64) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.transfers[ieee]
	if !ok {
		return StateIdle
	}
	return t.state
}
