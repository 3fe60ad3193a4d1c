// Package watch reruns a callback when any of a fixed set of files changes.
//
// Directories are watched rather than the files themselves, so editors and
// package managers that replace a file by renaming a temporary copy over it
// are still seen. Bursts of events are collapsed by a debounce interval and
// callbacks run one at a time on the watching goroutine.
package watch
