package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage:\n%s path/to/dbFile.db [flags]\nFlags:\n", os.Args[0])
	pflag.PrintDefaults()
	fmt.Fprint(os.Stderr, `
Shell commands:
  .tables          list tables
  .schema [name]   show CREATE statements
  .quit            exit
Everything else is executed as SQL.
`)
}
