// Package metrics records tool invocations of the docgraph server.
//
// Recorder is the narrow interface used by transports; PrometheusRecorder
// exposes the observations through a prometheus registry and NoopRecorder
// discards them.
package metrics
