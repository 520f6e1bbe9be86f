// Package model defines the data flowing between the classification engine
// and the renderers. A ClassificationResult is what the engine returns; a
// Report pairs it with the advice blocks parsed from its Advice text and the
// catalogue entry for its crop. Reports are built fresh for every render and
// are never cached.
package model
