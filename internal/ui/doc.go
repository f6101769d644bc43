// Package ui provides semantic text formatting for CLI output.
//
// This package defines formatters for different types of content (code,
// paths, errors, etc.) that render appropriately based on terminal
// capabilities. When colors are available, content is colorized. When
// NO_COLOR is set or the terminal doesn't support colors, text-based
// decorations (backticks, quotes) are used instead.
//
// # Semantic Formatters
//
// Use the appropriate formatter for the content type:
//
//	ui.Code.Sprint("handoff pickup")          // Commands and code
//	ui.Path.Sprint("identity.key")            // File paths
//	ui.Success.Sprint("✓")                     // Success indicators
//	ui.Error.Sprint("✗")                       // Error indicators
//	ui.Warning.Sprint("burn")                  // Warnings
//	ui.Info.Sprint("→")                        // Informational hints
//	ui.Highlight.Sprint("laptop")             // Hostnames and projects
//	ui.Muted.Sprint("protected")              // De-emphasized text
//	ui.Token.Sprint(ref.String())              // Record tokens
//	ui.Identity.Sprint(ui.ShortIdentity(id))  // Public identities
//
// # Color Behavior
//
// Status lines go to stderr. Colors are disabled when:
//   - NO_COLOR environment variable is set (any value)
//   - Terminal doesn't support colors (TERM=dumb, not a TTY)
//
// When colors are disabled, formatters apply text decorations:
//   - Code: `backticks`
//   - Highlight: 'single quotes'
//   - Muted: (parentheses)
//   - Others: no decoration. Tokens and identities in particular stay bare
//     so they can be copied and pasted.
package ui
