// Command binder manages a chartstore practice database from the shell:
// document CRUD, queries, migrations, seeding, export and import, and
// remote sync.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
