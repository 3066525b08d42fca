// Package io provides program image persistence for the DREL emulator.
//
// Images are raw little-endian instruction words. They can be written to
// any CreateFS (DirFS for the host file system) and read from any fs.FS.
package io
