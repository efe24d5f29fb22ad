// Package migrate applies versioned, ordered transformations to the
// store. The applied version lives in the metadata singleton; each run
// picks up where the last one stopped. The built-in migrations build and
// drop indexes, so replaying a step is safe.
package migrate
