package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/notargets/femtools/convergence"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing entries of a convergence study")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	f, err := os.Open(csvFile)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	studies, err := convergence.ReadCSV(f)
	if err != nil {
		panic(err)
	}
	for _, key := range convergence.SortedKeys(studies) {
		studies[key].Print(os.Stdout)
	}
}
