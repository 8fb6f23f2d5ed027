package ota

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Provider priority tiers used for the tie-break: the candidate with
// the highest file_version wins; ties are broken by provider priority
// (local directory > first-party > aggregate).
const (
	PriorityLocal      = 100
	PriorityFirstParty = 50
	PriorityAggregate  = 10
)

// Provider lists and serves OTA images keyed by (manufacturer_code,
// image_type, file_version). Refresh re-reads the provider's index;
// GetImage resolves and, for remote providers, downloads the matching
// image.
type Provider interface {
	// Name identifies the provider in logs and tie-break diagnostics.
	Name() string

	// Priority is this provider's tie-break weight; higher wins.
	Priority() int

	// Refresh re-reads the provider's index (a directory listing or a
	// remote index.json), used before a query so newly published
	// images are visible without a process restart.
	Refresh(ctx context.Context) error

	// GetImage returns the best image matching the given identity and
	// hardware version range, or ok=false if none match.
	GetImage(ctx context.Context, manufacturerCode, imageType uint16, minHW, maxHW uint16) (img *Image, ok bool, err error)
}

// LocalDirectoryProvider serves images from files on disk
// (config.Config.OTA.OTAUDirectory), always winning ties against any
// remote provider.
type LocalDirectoryProvider struct {
	dir string

	mu     sync.RWMutex
	images []*Image
}

// NewLocalDirectoryProvider returns a provider scanning dir for *.ota
// and *.zigbee files.
func NewLocalDirectoryProvider(dir string) *LocalDirectoryProvider {
	return &LocalDirectoryProvider{dir: dir}
}

func (p *LocalDirectoryProvider) Name() string { return "local:" + p.dir }
func (p *LocalDirectoryProvider) Priority() int { return PriorityLocal }

// Refresh rescans the directory, replacing the in-memory image set.
func (p *LocalDirectoryProvider) Refresh(ctx context.Context) error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			p.mu.Lock()
			p.images = nil
			p.mu.Unlock()
			return nil
		}
		return fmt.Errorf("ota: read %s: %w", p.dir, err)
	}

	var images []*Image
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".ota" && ext != ".zigbee" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(p.dir, e.Name()))
		if err != nil {
			continue
		}
		img, err := ParseImage(raw)
		if err != nil {
			continue
		}
		images = append(images, img)
	}

	p.mu.Lock()
	p.images = images
	p.mu.Unlock()
	return nil
}

func (p *LocalDirectoryProvider) GetImage(ctx context.Context, manufacturerCode, imageType uint16, minHW, maxHW uint16) (*Image, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return selectBest(p.images, manufacturerCode, imageType, minHW, maxHW)
}

// selectBest finds the highest file_version image matching the given
// identity among candidates whose hardware version range (when
// present) overlaps [minHW, maxHW].
func selectBest(candidates []*Image, manufacturerCode, imageType, minHW, maxHW uint16) (*Image, bool, error) {
	var best *Image
	for _, img := range candidates {
		if img.Header.ManufacturerCode != manufacturerCode || img.Header.ImageType != imageType {
			continue
		}
		if img.Header.HasHardwareVersions {
			if img.Header.MinHardwareVersion > maxHW || img.Header.MaxHardwareVersion < minHW {
				continue
			}
		}
		if best == nil || img.Header.FileVersion > best.Header.FileVersion {
			best = img
		}
	}
	return best, best != nil, nil
}

// indexEntry is the per-vendor OTA index JSON shape in widespread use
// across the Zigbee OTA ecosystem (the format the Koenkk aggregate
// index also follows): one entry per published image, naming its
// identity and download URL rather than embedding the image bytes
// directly.
type indexEntry struct {
	URL              string `json:"url"`
	ManufacturerCode uint16 `json:"manufacturerCode"`
	ImageType        uint16 `json:"imageType"`
	FileVersion      uint32 `json:"fileVersion"`
	MinFileVersion   uint32 `json:"minFileVersion,omitempty"`
	MinHardwareVersion uint16 `json:"minHardwareVersion,omitempty"`
	MaxHardwareVersion uint16 `json:"maxHardwareVersion,omitempty"`
}

// HTTPProvider fetches a vendor's index.json and downloads individual
// images over HTTP on demand.
type HTTPProvider struct {
	name       string
	indexURL   string
	priority   int
	httpClient *http.Client

	mu      sync.RWMutex
	entries []indexEntry
}

// NewHTTPProvider returns a provider backed by the index document at
// indexURL.
func NewHTTPProvider(name, indexURL string, priority int) *HTTPProvider {
	return &HTTPProvider{
		name:       name,
		indexURL:   indexURL,
		priority:   priority,
		httpClient: http.DefaultClient,
	}
}

func (p *HTTPProvider) Name() string { return p.name }
func (p *HTTPProvider) Priority() int { return p.priority }

// Refresh re-fetches and re-parses the provider's index document.
func (p *HTTPProvider) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.indexURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrDownloadFailed, p.name, resp.StatusCode)
	}

	var entries []indexEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("%w: parse %s index: %v", ErrDownloadFailed, p.name, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].FileVersion > entries[j].FileVersion })
	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()
	return nil
}

// GetImage downloads and parses the best matching entry's image.
func (p *HTTPProvider) GetImage(ctx context.Context, manufacturerCode, imageType uint16, minHW, maxHW uint16) (*Image, bool, error) {
	p.mu.RLock()
	entries := p.entries
	p.mu.RUnlock()

	var best *indexEntry
	for i := range entries {
		e := &entries[i]
		if e.ManufacturerCode != manufacturerCode || e.ImageType != imageType {
			continue
		}
		if e.MaxHardwareVersion != 0 && (e.MinHardwareVersion > maxHW || e.MaxHardwareVersion < minHW) {
			continue
		}
		if best == nil || e.FileVersion > best.FileVersion {
			best = e
		}
	}
	if best == nil {
		return nil, false, nil
	}

	raw, err := fetchURL(ctx, p.httpClient, best.URL)
	if err != nil {
		return nil, false, err
	}
	img, err := ParseImage(raw)
	if err != nil {
		return nil, false, err
	}
	return img, true, nil
}

func fetchURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP status %d", ErrDownloadFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrDownloadFailed, err)
	}
	return data, nil
}
