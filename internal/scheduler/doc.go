// Package scheduler assigns publish timestamps to clips and runs the polling
// worker that drains the due-queue one upload at a time.
package scheduler
