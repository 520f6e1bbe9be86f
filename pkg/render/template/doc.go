// Package template defines the seam between renderers and a concrete
// template engine. The gotemplate subpackage provides the pongo2-backed
// implementation used by the HTML renderer.
package template
