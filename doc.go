// Package asyncq provides a bounded-concurrency asynchronous task queue.
// It accepts units of work, admits at most a fixed number of them
// concurrently, runs the rest in FIFO order as capacity frees up, and
// reports each task's outcome independently through a settlement handle.
package asyncq
