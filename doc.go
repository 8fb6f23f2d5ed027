// Package zha is a Zigbee Home Automation application framework: a
// coordinator-side device tree, cluster attribute cache, and network
// orchestration layer sitting above a radio driver.
//
// Packages:
//
//	wire       - ZCL primitive type codec (Value, Buffer)
//	zcl        - frame headers, command/reporting types, FrameBuilder
//	zdo        - ZDO service primitives (descriptors, management, binds)
//	cluster    - per-cluster attribute/command tables
//	zigdev     - the device/endpoint/cluster state tree
//	radio      - the driver seam (Radio, Callbacks, Frame)
//	zhalog     - the logging interface used across every package
//	zhaevents  - the pub/sub event bus
//	config     - YAML configuration loading
//	controller - the Application Controller: the central orchestrator
//	store      - the Persistence Engine: SQLite-backed write-through storage
//	ota        - the OTA Engine: firmware providers and per-device upgrade state
//
// A caller wires a radio.Radio driver, a zhaevents.EventBus, and
// optionally a store.Store and an ota.Engine into a controller.Controller,
// then calls Start.
package zha
