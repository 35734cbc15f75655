// Command classvm loads a single compiled .class file, runs its main
// method on the interpreter, and prints a run summary. It is the thin
// driver around the classfile/vm/interpreter packages: class selection,
// multi-classfile linking, and real class loading are left to a caller
// that knows its own classpath (see spec.md's "out of scope" collaborators).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"classvm/classfile"
	"classvm/interpreter"
	"classvm/vm"
)

func main() {
	verbose := flag.Bool("v", false, "verbose mode - print executed instructions")
	debug := flag.Bool("debug", false, "enhanced frame debugging - show locals and stack")
	trace := flag.Bool("trace", false, "trace method calls and returns")
	showStats := flag.Bool("stats", false, "show heap statistics after execution")
	interactive := flag.Bool("tui", false, "open an interactive bytecode inspector instead of running to completion")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: classvm [-v] [-debug] [-trace] [-stats] [-tui] <classfile>")
		fmt.Println()
		fmt.Println("A partial JVM classfile interpreter.")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  -v        verbose mode (print bytecode execution)")
		fmt.Println("  -debug    enhanced frame debugging (locals, stack)")
		fmt.Println("  -trace    trace method calls and returns")
		fmt.Println("  -stats    show heap statistics after execution")
		fmt.Println("  -tui      open an interactive bytecode inspector")
		os.Exit(1)
	}

	classPath := args[0]

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	start := time.Now()
	cf, err := classfile.ParseFile(classPath)
	decodeDuration := time.Since(start)
	if err != nil {
		log.Errorw("failed to load class file", "path", classPath, "error", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInspector(classPath, cf); err != nil {
			log.Errorw("inspector exited with error", "error", err)
			os.Exit(1)
		}
		return
	}

	log.Infow("loaded class", "name", cf.ClassName(), "major", cf.MajorVersion, "minor", cf.MinorVersion, "decode_duration", decodeDuration)

	jvm := vm.NewJVM()
	defer jvm.Shutdown()
	class := jvm.LoadClass(cf)

	interp := interpreter.NewInterpreterWithJVM(jvm)
	interp.SetVerbose(*verbose)
	interp.SetDebug(*debug)
	interp.SetTrace(*trace)

	result, hasResult, runErr := interp.Execute(class)
	if runErr != nil {
		log.Errorw("execution failed", "class", cf.ClassName(), "error", runErr)
		os.Exit(1)
	}

	if hasResult {
		log.Infow("execution completed", "class", cf.ClassName(), "result", result.String())
	} else {
		log.Infow("execution completed", "class", cf.ClassName())
	}

	if *showStats {
		stats := jvm.GetHeap().Stats()
		log.Infow("heap statistics",
			"allocations", stats.AllocCount,
			"released", stats.ReleaseCount,
			"live", stats.LiveObjects,
			"bytes", stats.TotalBytes,
		)
	}
}
