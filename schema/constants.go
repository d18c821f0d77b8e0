package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// RejectReason names the filter that discarded a repository.
	RejectReason string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All outcomes of the filter pipeline. Kept is the only accepting one.
const (
	Kept                    RejectReason = "KEPT"
	NoFiles                 RejectReason = "NO_FILES"
	InsufficientSourceRatio RejectReason = "INSUFFICIENT_SOURCE_RATIO"
	LimitedDevs             RejectReason = "LIMITED_DEVS"
	LimitedCommits          RejectReason = "LIMITED_COMMITS"
	NoPattern               RejectReason = "NO_PATTERN"
	ScanFailed              RejectReason = "SCAN_FAILED"
)

// AllReasons lists every outcome in pipeline order.
var AllReasons = []RejectReason{
	NoFiles,
	InsufficientSourceRatio,
	LimitedDevs,
	LimitedCommits,
	NoPattern,
	ScanFailed,
	Kept,
}

// DefaultKeywords are the machine-learning library names searched for in source files.
// Keywords are matched against lower-cased lines without being lower-cased themselves,
// so mixed-case entries like "MAMEToolkit" never produce a match.
var DefaultKeywords = []string{
	"sklearn", "h5py", "gym", "rl", "tensorflow", "keras", "tf", "stable_baselines",
	"tensorforce", "rl_coach", "pyqlearning", "MAMEToolkit", "chainer", "torch", "chainerrl",
}

// SourceExtensions are the file suffixes counted as Python source.
var SourceExtensions = []string{".py", ".ipynb"}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
