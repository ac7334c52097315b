package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/pflag"
)

func main() {
	pflag.Parse()
	if *fHelp {
		printUsage()
		return
	}
	if *fVersion {
		printVersion()
		return
	}
	path := pflag.Arg(0)
	if path == "" {
		fmt.Fprintln(os.Stderr, "db file is not provided")
		printUsage()
		os.Exit(1)
	}

	sh, err := openShell(path, *fReadOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error while opening database: %v\n", err)
		os.Exit(1)
	}

	if *fExec != "" {
		result, err := sh.Exec(*fExec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error while executing command: %v\n", err)
			_ = sh.Close()
			os.Exit(1)
		}
		fmt.Println(result)
		_ = sh.Close()
		return
	}

	runLiner(sh)
}

func printVersion() {
	cli, lib := "(unknown)", "(unknown)"
	if info, ok := debug.ReadBuildInfo(); ok {
		cli = info.Main.Version
		for _, dep := range info.Deps {
			if dep.Path != "github.com/anyproto/go-sqlite" {
				continue
			}
			lib = dep.Version
			if dep.Replace != nil && dep.Replace.Version != "" {
				lib = dep.Replace.Version
			}
			break
		}
	}
	fmt.Printf("go-sqlite-cli %s (library %s)\n", cli, lib)
}
