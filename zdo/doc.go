// Package zdo implements the Zigbee Device Object request/response frame
// shapes used during device interview and network management: Node
// Descriptor, Active Endpoints, Simple Descriptor, Bind/Unbind, and the
// Mgmt_* management clusters (Lqi, Rtg, Permit Joining, Leave, NWK
// Update).
//
// Every ZDO frame is a one-byte transaction sequence number followed by
// a request- or response-specific payload; this package supplies the
// cluster ids and the payload codecs, leaving TSN allocation and
// transport to the controller package.
package zdo
