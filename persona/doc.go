// Package persona ranks document sections against a persona's vocabulary
// and a free-text task description.
//
// This is the collection mode of the pipeline: instead of building one
// document's outline, it segments every document of a collection into
// sections at heading-like boundaries, scores each section against the
// persona's keywords and the task, ranks the survivors across the whole
// collection, and distills each top section into a few representative
// sentences.
//
//	inputs := []persona.DocumentInput{{Name: "guide.pdf", Elements: elements}}
//	artifact, err := persona.NewProcessor().Process(inputs, "Travel Planner",
//		"Plan a trip of 4 days for a group of 10 college friends.")
//
// # Profiles
//
// A [Profile] is an immutable keyword vocabulary with optional
// task-conditioned relevance rules. Three profiles are built in (Travel
// Planner, HR Professional, Food Contractor); custom vocabularies load from
// YAML with [LoadProfiles]. Unknown persona names degrade to an empty
// vocabulary rather than failing: sections then rank on structural signals
// alone.
//
// # Determinism
//
// Ranking is a whole-collection reduction. Sections are collected in input
// document order and all sorts are stable, so equal scores resolve to the
// earlier document and page, never to goroutine arrival order.
package persona
