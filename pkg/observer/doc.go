// Package observer publishes pipeline lifecycle events (fork, wire, exit,
// reap, tee insertion, edge rejection) to zero or more subscribers, the way
// thaiyyal/backend/pkg/observer decouples workflow-node lifecycle from
// anything that wants to react to it — the telemetry and logging packages
// are both observers here.
package observer
