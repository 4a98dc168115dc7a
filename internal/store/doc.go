// Package store keeps the latest version report for serve mode and fans
// out update events to subscribers.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Report]: Storage representation of a generated report
//   - [Event]: Notification sent to subscribers on every generation attempt
//
// Only successful generations replace the stored report. A failed attempt
// is recorded as the last error and announced, but the previous report is
// kept. Subscribers receive events via channels with non-blocking sends:
// slow subscribers miss events rather than block generation.
//
// Users of the versionboard library should not need to interact with this
// package directly.
package store
