// Package spool turns a directory into a send queue.
//
// Watcher scans the directory once at start and then uses fsnotify to pick up
// every file that is created or moved into it. Producers should write
// elsewhere (or under a name starting with "." or ending in ".tmp") and
// rename the finished file into place, since a file is read as soon as it
// appears. Each file's contents are handed to a SendFunc together with a
// priority: files ending in the quick suffix use types.MaxPriority, the rest
// the configured priority. Sent files may be removed afterwards.
package spool
