package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

var linerContext = "> "

func runLiner(sh *shell) {
	line := liner.NewLiner()
	line.SetCompleter(sh.Complete)
	line.SetCtrlCAborts(true)
	lineClose := func() {
		_ = line.Close()
		_ = sh.Close()
	}
	defer lineClose()

	for {
		cmdLine, err := line.Prompt(linerContext)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(os.Stderr, "close database..")
				lineClose()
				os.Exit(0)
			} else {
				lineClose()
				fmt.Fprintf(os.Stderr, "unexpected error: %v\n", err)
				os.Exit(1)
			}
		}
		cmdLine = strings.TrimSpace(cmdLine)
		if cmdLine == "" {
			continue
		}
		if cmdLine == ".quit" || cmdLine == ".exit" {
			return
		}
		line.AppendHistory(cmdLine)

		st := time.Now()
		if res, err := sh.Exec(cmdLine); err != nil {
			fmt.Fprintf(os.Stderr, "exec error: %v\n", err)
		} else {
			if res != "" {
				fmt.Println(res)
			}
			fmt.Fprintf(os.Stderr, "%s %v\n", color.MagentaString("ok"), time.Since(st))
		}
	}
}
