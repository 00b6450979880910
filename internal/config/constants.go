package config

import "icwfixtures/pkg/contracts"

// Application constants - generation parameters are part of the fixture
// contract and are never read from the environment
const (
	// Application Info
	AppName    = "icwfixtures"
	AppVersion = contracts.Version

	// Generation
	DefaultSeed         = 42
	DefaultPanels       = 100
	DefaultVars         = 5
	DefaultMinObs       = 500  // inclusive
	DefaultMaxObs       = 2000 // exclusive
	DefaultControlFloor = 100

	// Output files (relative to the output directory)
	DatasetFileName      = "test_datasets.csv"
	ScriptFileName       = "run_swindex.do"
	ResultsFileName      = "swindex_results.csv"
	NormByResultsFile    = "swindex_normby_results.csv"
	DefaultManifestFile  = "test_datasets_manifest.xlsx"
	DefaultConfigFile    = "fixturegen.yaml"
	DefaultLogFile       = "logs/fixturegen.log"
	EnvPrefix            = "ICW"
	CompletionMessageFmt = "Created %s and %s"

	// Float rendering styles for feature columns
	FloatStyleShortest = "shortest"
	FloatStyleFixed    = "fixed"

	// Trace exporters
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "stderr"
)
