// Package action wraps whole modules of host-facing operations so that every
// call runs through the shared dependency-aware queue instead of executing
// immediately.
//
// An action module is a map of action names to descriptors. A descriptor
// bundles the command function with the locks it reads and writes; omitted
// declarations default to the full lock set, which serializes the action
// against everything else. Synchronizing a module yields a parallel module
// with identical keys whose functions enqueue the original command and
// return a future - the seam at which all higher-level operations become
// subject to the global ordering and concurrency discipline. No action may
// legally run outside this mechanism.
//
// The synchronizer also records timing telemetry per action: time spent in
// the backlog, execution time, and enqueue-to-completion round-trip time.
// Telemetry is observational only and is recorded on success and failure
// alike without touching the action's outcome.
package action
