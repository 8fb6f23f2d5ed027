package ota

import "context"

// fakeProvider is a Provider backed by a fixed, in-memory image set, used
// to exercise tie-break selection without touching the filesystem or the
// network.
type fakeProvider struct {
	name     string
	priority int
	images   []*Image
}

func (p *fakeProvider) Name() string                 { return p.name }
func (p *fakeProvider) Priority() int                 { return p.priority }
func (p *fakeProvider) Refresh(ctx context.Context) error { return nil }

func (p *fakeProvider) GetImage(ctx context.Context, manufacturerCode, imageType, minHW, maxHW uint16) (*Image, bool, error) {
	return selectBest(p.images, manufacturerCode, imageType, minHW, maxHW)
}
