package cli

// Config holds the options of one CLI invocation
type Config struct {
	// ConfigDir is the directory holding the configuration file
	ConfigDir string

	// ConfigName is the configuration file name without extension
	ConfigName string

	// DryRun prints generated modules instead of writing them
	DryRun bool

	// Concurrency bounds parallel module generations; zero means GOMAXPROCS
	Concurrency int

	// Verbose enables detailed logging and error reporting
	Verbose bool
}
