// Package naming builds output file paths and resolves collisions.
//
// An output path is the input's base name with the target extension, placed
// in the output directory. When that name is taken the resolver tries
// stem_1.ext, stem_2.ext, ... and reserves the first free candidate by
// creating it exclusively, so two conversions never share a path even when
// they run concurrently or another process writes into the same directory.
package naming
