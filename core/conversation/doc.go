// Package conversation carries workflow state across turns. A [Manager]
// couples a workflow runner with a memory.Store: every Continue call replays
// the conversation's last committed record as the run's initial state, so
// fields written in earlier turns stay visible to later ones.
package conversation
