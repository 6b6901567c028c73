package rule

import "embed"

// builtinRulesFS embeds the built-in rules directory: log levels with
// nested failure classes, and HTTP status classes.
//
//go:embed rules/*.yml
var builtinRulesFS embed.FS
