// Package cli provides the command-line interface for harmock.
//
// Commands:
//   - serve: Serve a capture as mock endpoints, one listener per authority
//   - analyze: Find correlated values in a capture and print extraction directives
//   - config: Display effective configuration and where each value came from
//   - version: Show harmock version
//
// Captures are selected with --capture, which accepts a single file or a
// doublestar glob such as 'captures/**/*.har'. Matching files are read in
// lexical order and their entries numbered as one sequence.
//
// Usage:
//
//	harmock serve --capture login.har --base-port 7000
//	harmock analyze --capture 'captures/**/*.har' --json
//	harmock config --sources
package cli
