package model

// Movie is a fully enriched row: the resolved country joined with economic
// and demographic data, ratings, crew, and the derived rank columns.
type Movie struct {
	TitleID string
	Title   string
	Region  string
	Country string

	GDP     Metric // US$ millions
	RankGDP int

	AverageRating float64
	NumVotes      int64
	Directors     string

	CDFVotes         float64
	Population       Metric
	GDPPerCapita     Metric
	PopulationRank   int
	GDPPerCapitaRank int
	MovieCount       int
	RankMovieCount   int
}

// CountryScore is a country leaderboard row.
type CountryScore struct {
	Country string
	Score   float64
}

// DirectorStat is a director leaderboard row.
type DirectorStat struct {
	Director       string
	Films          int
	MeanRating     float64
	RatingVariance float64
	Rating         float64
}
