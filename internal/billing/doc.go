// Package billing holds the bill data model shared by the workflow core and
// the API client: line items, facilities, detection signals and comparison
// results. Optional numeric fields are pointers so that a present zero is
// distinguishable from an absent value.
package billing
