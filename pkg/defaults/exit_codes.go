package defaults

// Exit codes for the CLI.
const (
	ExitSuccess  = 0 // Clean exit
	ExitRunError = 1 // Launch failure, tool failure, or scan error
	ExitUsage    = 2 // Invalid arguments or configuration
)
