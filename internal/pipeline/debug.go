package pipeline

import (
	"io"
	"log"
)

var traceLogger *log.Logger

// SetLogWriters configures the trace stream for the pipeline package.
// Pass nil to disable it.
func SetLogWriters(trace io.Writer) {
	if trace == nil {
		traceLogger = nil
		return
	}
	traceLogger = log.New(trace, "[pipeline] ", log.LstdFlags|log.Lmicroseconds)
}

func tracef(format string, args ...interface{}) {
	if traceLogger != nil {
		traceLogger.Printf(format, args...)
	}
}
