package dsp

import (
	"io"
	"log"
)

var diagLogger *log.Logger

// SetLogWriters configures the diagnostic stream for the dsp package.
// Pass nil to disable it.
func SetLogWriters(diag io.Writer) {
	if diag == nil {
		diagLogger = nil
		return
	}
	diagLogger = log.New(diag, "[dsp] ", log.LstdFlags|log.Lmicroseconds)
}

func diagf(format string, args ...interface{}) {
	if diagLogger != nil {
		diagLogger.Printf(format, args...)
	}
}
