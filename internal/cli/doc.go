// Package cli provides CLI discovery, version validation, and command building
// for the claude CLI binary.
//
// # CLI Discovery
//
// The Discoverer interface locates and validates the claude binary:
//
//	discoverer := cli.NewDiscoverer(&cli.Config{
//	    CliPath: "",           // Optional explicit path
//	    Logger:  slog.Default(),
//	})
//	cliPath, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.CliPath (if provided)
//  2. System PATH
//  3. Common installation directories, unless Config.SkipCommonPaths is set
//
// # Version Validation
//
// During discovery, the CLI version is compared against MinimumVersion and a
// warning is logged when it is older. Version checking can be skipped via
// Config.SkipVersionCheck or the CLAUDIFY_SKIP_VERSION_CHECK environment
// variable.
//
// # Command Building
//
//	args := cli.BuildArgs(options)
//	env := cli.BuildEnvironment(options)
package cli
