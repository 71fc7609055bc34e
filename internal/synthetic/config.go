// Package synthetic generates IMDb-shaped datasets with a matching GDP table,
// runs the pipeline over them and verifies the resulting leaderboards.
package synthetic

// Config holds configuration for a generated dataset.
type Config struct {
	Dir       string // Output directory for the five input files
	Movies    int    // Number of titles to generate
	Directors int    // Size of the director pool
	StartYear int    // First year of the generated range
	EndYear   int    // Last year of the generated range
	Seed      uint64 // Random seed; equal seeds give equal files
}

// DefaultConfig returns a dataset large enough for directors to reach the
// default film threshold.
func DefaultConfig() Config {
	return Config{
		Movies:    5000,
		Directors: 120,
		StartYear: 1990,
		EndYear:   2020,
		Seed:      1,
	}
}

// Stats holds generation statistics.
type Stats struct {
	Movies        int
	AkaRows       int
	Rated         int
	WithCrew      int
	NoAlternates  int
	UnknownYear   int
	UnknownRegion int
}
