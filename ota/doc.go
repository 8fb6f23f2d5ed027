// Package ota is the OTA Engine: the ZCL OTA Upgrade (0x0019) cluster
// server role, a set of image providers, and the per-device upgrade
// state machine that drives Query-Next-Image through Upgrade-End.
//
// Engine plays the server role the coordinator occupies: devices are
// always the client issuing Query-Next-Image-Request,
// Image-Block-Request, and Upgrade-End-Request; Engine answers each
// from whichever Provider currently holds the best matching image.
package ota
