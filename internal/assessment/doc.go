// Package assessment classifies comparison results for display and computes
// the aggregates shown alongside them.
//
// Every function here is pure. Optional numeric fields are tested for
// presence explicitly: a reported value of 0 ("no savings found") is kept and
// rendered as 0, while a missing field stays absent.
package assessment
