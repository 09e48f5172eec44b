package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	tm "github.com/buger/goterm"
	"github.com/ztrue/tracerr"
)

func IsError(e error) bool {
	return e != nil
}

func HandleError(e error) {
	if IsError(e) {
		tracerr.Print(tracerr.Wrap(e))
		os.Exit(1)
	}
}

func PrintLn(template string, args ...interface{}) {
	fmt.Printf("["+AppName+"] "+template+"\n", args...)
}

// PrintReplaceLn rewrites the current terminal line, used for the running
// processed counter. It never goes through the log stream.
func PrintReplaceLn(template string, args ...interface{}) {
	tm.Printf("\033[2K\r"+template, args...)
	tm.Flush()
}

func JsonEncodePretty(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if IsError(err) {
		return data, err
	}

	var out bytes.Buffer
	err = json.Indent(&out, data, "", "  ")

	return out.Bytes(), err
}
