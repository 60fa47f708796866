// Package sqlite provides semantic index loading and writing backed by
// one SQLite file per course offering.
//
// Index files live under a base directory and are named after their
// key, e.g. "vectorstores/circuits_2024_1.db". Loading reads the whole
// index into memory once; search is brute-force cosine similarity over
// the loaded chunks, which is fast enough for course-sized collections
// (thousands of chunks, not millions).
//
// A loaded index is cached per key and shared read-only across
// requests. The loader watches the base directory with fsnotify and
// drops the cache entry when its file is rewritten, so a rebuilt index
// is picked up without a process restart.
package sqlite
