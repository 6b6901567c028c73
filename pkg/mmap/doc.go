// Package mmap provides read-only memory-mapped file access.
//
// # Overview
//
// A Mapping exposes a byte range of a file as a flat []byte backed by the
// operating system's virtual memory, so multi-gigabyte log files can be
// indexed and searched without a read-and-copy pass.
//
// # Usage
//
//	m, err := mmap.Open("app.log")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// # Alignment
//
// Platforms only map at page (unix) or allocation-granularity (windows)
// boundaries. Map rounds the requested offset down, maps the padded region,
// and exposes only the caller-requested bytes. The padded region is kept in
// the Mapping and is exactly what Close releases.
//
// # Thread Safety
//
// The mapped bytes are immutable, so Bytes and Region may be read from any
// number of goroutines. Close is idempotent; callers must not touch slices
// obtained from the Mapping after Close returns.
package mmap
