// Package model contains domain models passed between pipeline stages.
package model

// NullMarker is the IMDb placeholder for a missing value in TSV exports.
const NullMarker = `\N`

// International is the country assigned to movies whose region is absent,
// ambiguous, or unknown to the country table.
const International = "International"

// TitleKind classifies an alternate-title record by its isOriginalTitle flag.
type TitleKind int

const (
	// KindUnflagged marks rows whose flag is neither 1 nor 0.
	KindUnflagged TitleKind = iota
	// KindOriginal marks the release title (flag = 1).
	KindOriginal
	// KindAlternate marks a localized or translated title (flag = 0).
	KindAlternate
)

// TitleAka is a row of title.akas.tsv.
type TitleAka struct {
	TitleID string
	Title   string
	Region  string // ISO-3166-1 alpha-2 code, or NullMarker
	Kind    TitleKind
}

// TitleBasics is a row of title.basics.tsv. StartYear is kept raw; the year
// filter decides what counts as numeric.
type TitleBasics struct {
	TConst       string
	TitleType    string
	PrimaryTitle string
	StartYear    string
}

// Rating is a row of title.ratings.tsv.
type Rating struct {
	TConst        string
	AverageRating float64
	NumVotes      int64
}

// Crew is a row of title.crew.tsv. Directors may hold several comma separated
// identifiers or NullMarker.
type Crew struct {
	TConst    string
	Directors string
}

// GDP is a row of the GDP reference CSV. Rank is the 1-based position of the
// row in the file.
type GDP struct {
	Country  string
	Millions Metric
	Rank     int
}

// MovieRegion is a rated movie together with the regions of its alternate
// releases, and the region decided for it.
type MovieRegion struct {
	TitleID string
	Title   string
	Regions []string
	Region  string // decided region code; empty when Regions is empty
}
