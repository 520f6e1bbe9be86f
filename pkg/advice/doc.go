// Package advice turns the loosely formatted advice text returned by the
// classification engine into an ordered sequence of typed blocks.
//
// The accepted dialect is deliberately small:
//
//	# **Heading**          heading1
//	## **Heading**         heading2
//	**Heading**            heading3 (an optional trailing colon is allowed)
//	- item / • item        bullet list; "- Label:" becomes a sub-heading
//	1. item                numbered list
//	anything else          paragraph
//
// Bold markers are removed from list items, sub-headings and paragraphs.
// Parse never fails: text outside the dialect degrades to paragraphs.
package advice
