// Package zcl implements the Zigbee Cluster Library frame header, the
// general command set, and the default-response suppression policy.
//
// The package is split three ways: build an outbound frame
// (FrameBuilder), parse an inbound one (ParseFrame), and route commands
// that were not explicitly awaited (CommandRegistry).
//
// # Quick start
//
//	b := zcl.NewFrameBuilder(zcl.CommandReadAttributes, 0x01)
//	b.Direction = zcl.ClientToServer
//	frame, err := b.Build([]byte{0x00, 0x00})
//
//	hdr, payload, err := zcl.ParseFrame(raw)
package zcl
