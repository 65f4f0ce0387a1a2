// Package cli provides the famledger maintenance command-line tool.
//
// Each run executes one subcommand against the configured backend:
//
//	migrate   copy a household's books from the local store to the remote store
//	backup    export a snapshot to S3 or to a local directory
//	token     mint an access token for the HTTP API
//	generate  create the month's pending payments from the templates
//
// Shared settings come from the server configuration (file and short
// flags). Subcommands read their own long flags, such as -owner.
// When no credentials passphrase is configured and stdin is a terminal,
// the tool asks for one before opening the books.
package cli
