// Copyright 2024 The Geriatrix Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the leveled loggers used by the aging engine
// and CLI. It mirrors the small loggerFactory used elsewhere in the
// corpus: level-prefixed *log.Logger instances writing to stdout/stderr
// by default, or to a file when InitLogFile is called.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
)

// ProgrammeName identifies this tool's log lines when multiplexed with
// other output (e.g. when run under a supervisor that merges logs).
const ProgrammeName = "geriatrix"

var (
	defaultFactory    *loggerFactory
	defaultInfoLogger *log.Logger
)

func init() {
	defaultFactory = &loggerFactory{flag: log.Ldate | log.Ltime | log.Lmicroseconds}
	defaultInfoLogger = NewInfo("")
}

// InitLogFile redirects all subsequently-created loggers to filename. An
// empty filename restores stdout/stderr logging.
func InitLogFile(filename string) error {
	var f *os.File
	if filename != "" {
		var err error
		f, err = os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
	}
	defaultFactory = &loggerFactory{file: f, flag: log.Ldate | log.Ltime | log.Lmicroseconds}
	defaultInfoLogger = NewInfo("")
	return nil
}

// Close releases the current log file, if any.
func Close() {
	if f := defaultFactory.file; f != nil {
		f.Close()
		defaultFactory.file = nil
	}
}

// NewDebug returns a logger that prefixes DEBUG lines with prefix.
func NewDebug(prefix string) *log.Logger { return defaultFactory.newLogger("DEBUG", prefix) }

// NewInfo returns a logger that prefixes INFO lines with prefix.
func NewInfo(prefix string) *log.Logger { return defaultFactory.newLogger("INFO", prefix) }

// NewError returns a logger that prefixes ERROR lines with prefix.
func NewError(prefix string) *log.Logger { return defaultFactory.newLogger("ERROR", prefix) }

// Infof writes to the default info logger.
func Infof(format string, v ...interface{}) { defaultInfoLogger.Printf(format, v...) }

// Info writes to the default info logger.
func Info(v ...interface{}) { defaultInfoLogger.Println(v...) }

type loggerFactory struct {
	file *os.File // nil means stdout/stderr
	flag int
}

func (f *loggerFactory) newLogger(level, prefix string) *log.Logger {
	return log.New(f.writer(level), prefix, f.flag)
}

func (f *loggerFactory) writer(level string) io.Writer {
	if f.file != nil {
		return &levelWriter{w: f.file, level: level}
	}
	if level == "ERROR" {
		return os.Stderr
	}
	return os.Stdout
}

// levelWriter prefixes every write with "LEVEL: ", the way the corpus's
// text-format log writers do for on-disk logs.
type levelWriter struct {
	w     io.Writer
	level string
}

func (lw *levelWriter) Write(p []byte) (int, error) {
	if _, err := fmt.Fprintf(lw.w, "%s: ", lw.level); err != nil {
		return 0, err
	}
	n, err := lw.w.Write(p)
	return n, err
}
