// Package orchestrator wires the classifier → report builder → renderer
// pipeline, resolving go-theme configuration and recording history on the
// way, for callers that prefer a single entry point.
package orchestrator
