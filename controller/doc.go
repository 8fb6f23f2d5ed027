// Package controller implements the central orchestrator: it owns the
// device table, allocates transaction sequence numbers, dispatches
// inbound APS frames to the right cluster, serializes outbound
// requests per device, drives the join interview state machine, and
// emits the controller-level event stream.
//
// A Controller is constructed with a radio.Radio driver and a
// zhaevents.EventBus, and implements radio.Callbacks so a driver can be
// wired directly to it:
//
//	ctrl := controller.New(myRadio, zhaevents.NewEventBus())
//	if err := ctrl.Start(ctx, true); err != nil {
//		log.Fatal(err)
//	}
//	defer ctrl.Shutdown(ctx)
//
// TSN allocation and pending-reply tracking use a single owned counter
// plus a correlation map; the per-device outbound queue follows the
// same per-target serialization idiom.
package controller
