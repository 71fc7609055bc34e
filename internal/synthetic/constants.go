package synthetic

// File names written by Generate.
const (
	fileAkas    = "title.akas.tsv"
	fileBasics  = "title.basics.tsv"
	fileRatings = "title.ratings.tsv"
	fileCrew    = "title.crew.tsv"
	fileGDP     = "gdp.csv"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Generation probabilities.
const (
	probUnknownYear   = 0.02
	probNoAlternates  = 0.05
	probPrimaryRegion = 0.7
	probUnknownRegion = 0.03
	probRated         = 0.9
	probCrew          = 0.95
	probNoDirector    = 0.04
	probTwoDirectors  = 0.1
	maxAlternates     = 4
	yearMargin        = 5
	maxLogVotes       = 12
	directorZipfS     = 1.1
	directorZipfV     = 2
	unknownRegionCode = "XWG"
)

// country is a producing country with its GDP in US$ millions. The slice
// below is ordered by GDP descending, which is the order of the GDP file.
type country struct {
	code   string
	name   string
	gdp    float64
	weight int
}

var countries = []country{
	{"US", "United States", 25462700, 30},
	{"JP", "Japan", 4231141, 8},
	{"DE", "Germany", 4072192, 6},
	{"IN", "India", 3385090, 10},
	{"GB", "United Kingdom", 3070668, 8},
	{"FR", "France", 2782905, 8},
	{"IT", "Italy", 2010432, 5},
	{"BR", "Brazil", 1920096, 4},
	{"KR", "Korea, Republic of", 1665246, 5},
	{"MX", "Mexico", 1414187, 3},
	{"ES", "Spain", 1397509, 4},
	{"PL", "Poland", 688177, 4},
}
