package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

var debugging = false

var (
	levelDebug = color.New(color.FgCyan).SprintFunc()("DEBUG")
	levelInfo  = color.New(color.FgGreen).SprintFunc()("INFO")
	levelWarn  = color.New(color.FgYellow).SprintFunc()("WARN")
	levelError = color.New(color.FgRed).SprintFunc()("ERROR")
)

func init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

// SetDebug enables debugf output.
func SetDebug(enabled bool) {
	debugging = enabled
}

func debugf(format string, args ...any) {
	if debugging {
		log.Printf("%-5s %s", levelDebug, fmt.Sprintf(format, args...))
	}
}

func infof(format string, args ...any) {
	log.Printf("%-5s %s", levelInfo, fmt.Sprintf(format, args...))
}

func warnf(format string, args ...any) {
	log.Printf("%-5s %s", levelWarn, fmt.Sprintf(format, args...))
}

func errorf(format string, args ...any) {
	log.Printf("%-5s %s", levelError, fmt.Sprintf(format, args...))
}

// logger builds the zap logger handed to the SDK and the web shim.
func logger() *zap.Logger {
	if debugging {
		l, err := zap.NewDevelopment()
		if err == nil {
			return l
		}
	}

	l, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}

	return l
}
