// Package finding provides the shared vulnerability finding types
// used across the scan, taxonomy, and report packages.
//
// The second-stage scanner emits one JSON object per matched template;
// this package holds the normalized form those objects are mapped into,
// plus the severity scale used for sorting and display.
package finding
