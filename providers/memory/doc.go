// Package memory defines the conversation persistence contract used by
// multi-turn workflows: the latest committed state record per conversation
// plus an ordered turn history. Implementations live in subpackages —
// inmemory for tests and single-process use, redismem for shared deployments.
package memory
