package timeline

import (
	"github.com/Maokus/MVMNT-sub009/internal/logger"
	"github.com/Maokus/MVMNT-sub009/sdk/contracts"
)

// defaultTempoBPM is substituted when a file carries a degenerate tempo and
// the caller did not choose another default.
const defaultTempoBPM = 120

// applyDefaultOptions sets default values for ParseOptions if not
// explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ParseOptions.
//
// Returns:
//   - contracts.ParseOptions: A structure containing the finalized parse options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ParseOptions, error) {
	options := &contracts.ParseOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger() // Default to the zap-backed logger
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel // Default log level to InfoLevel
	}
	if options.DefaultTempoBPM <= 0 {
		options.DefaultTempoBPM = defaultTempoBPM
	}

	options.Logger.SetLevel(options.LogLevel) // Set the logger to the specified log level
	return *options, nil
}
