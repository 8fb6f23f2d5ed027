// Package zhalog is a thin structured-logging facade injected into the
// controller, store, and OTA engine via functional options, so none of
// them hard-code a concrete logger.
//
// The default implementation logs directly via the standard log
// package; zhalog.Logger wraps that behind an interface so tests can
// inject a recording logger instead of writing to stderr.
package zhalog
