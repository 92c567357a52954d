package main

import (
	"flag"
	"fmt"
	"os"
)

const usage = `
fibergen generates the FuncN coroutine adapters of the fiber package.

USAGE:
  fibergen [OPTIONS]

OPTIONS:
  -n <N>                   Highest number of parameters to generate (default 8)

  -o, --output <FILENAME>  Name of the Go file to generate (default stdout)

      --package <NAME>     Package of the generated file (default fiber)

  -h, --help               Show this help information
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	arity := flag.Int("n", 8, "")
	output := flag.String("output", "", "")
	flag.StringVar(output, "o", "", "")
	pkg := flag.String("package", "fiber", "")

	flag.Usage = func() { println(usage[1:]) }
	flag.Parse()

	if *arity < 1 {
		return fmt.Errorf("invalid arity: %d", *arity)
	}

	filename := *output
	if filename == "" {
		filename = "params_generated.go"
	}
	src, err := generate(filename, *pkg, *arity)
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = os.Stdout.Write(src)
		return err
	}
	return os.WriteFile(*output, src, 0644)
}
