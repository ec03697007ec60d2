// Package domain models UN population data portal observations.
//
// # Data Source
//
// Rows come from the UN Population Division data portal CSV export
// (https://population.un.org/dataportal/). Each row is one population count
// for a location, a year, a sex, and an age interval. The ingest command reads
// the CSV, normalizes it with [Normalize], and writes the canonical set as a
// JSON artifact that the dashboard loads at startup.
//
// # Portal Conventions
//
// Sex column:
//
//	"Male", "Female", or "Both sexes". Other values (e.g. sex ratios exported
//	alongside counts) are out of scope and dropped.
//
// Age columns:
//
//	Age       display label, e.g. "0-4", "25-29", "100+", "Total".
//	AgeStart  inclusive lower bound in years.
//	AgeEnd    inclusive upper bound in years; empty for open-ended bands.
//
// When Age is blank the label is synthesized as "{AgeStart}-{AgeEnd}".
//
// Time column:
//
//	Calendar year as an integer. Decimal renderings such as "2020.0" are
//	accepted when integral.
//
// # Age Categories
//
// Each observation is assigned one of six demographic bands by [Classify]:
//
//	Minor (0-17) | Young adult (18-44) | Middle adult (45-59)
//	Older adult (60-74) | Elderly (75-89) | Longevous elderly (90+)
//
// Intervals that straddle a band boundary, open intervals without a usable
// bound, and "Total" rows are Unclassified. Category-based views skip
// Unclassified rows, which keeps "Total" rows from double counting.
package domain
