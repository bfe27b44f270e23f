package config

import "time"

// DefaultConfigDir is the default location for glucowatch configuration.
const DefaultConfigDir = "~/.config/glucowatch"

// DefaultCacheDir is the default location for the result cache.
const DefaultCacheDir = "~/.config/glucowatch"

// DefaultDBName is the filename for the SQLite result cache.
const DefaultDBName = "glucowatch.db"

// DefaultMaxQuestions caps the generated question list.
const DefaultMaxQuestions = 10

// DefaultAnalysisTimeout bounds one pipeline run. Analysis over a
// bounded export window is fast; this only guards pathological inputs.
const DefaultAnalysisTimeout = 30 * time.Second

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}
