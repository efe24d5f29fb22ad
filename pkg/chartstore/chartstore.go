// Package chartstore identifies the module build.
package chartstore

// Version is the module release version.
const Version = "0.3.0"
