package cmd

// Shared flag-backed variables used across more than one subcommand.
var (
	genesPath    string
	genomesPath  string
	paralogsPath string
)
