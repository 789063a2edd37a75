// Package cli wires the cobra command tree to the app package. It owns flag
// parsing and the mapping of failures to process exit codes.
package cli
