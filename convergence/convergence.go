// Package convergence records errors over a sequence of refined meshes and
// computes the observed order of convergence.
package convergence

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/notargets/femtools/types"
)

type ConvergenceStudy struct {
	Title    string
	Degree   int
	Norms    []types.NormType
	NumCells []int
	H        []float64   // Largest cell diameter of each mesh
	Errors   [][]float64 // [mesh][norm]
}

func NewConvergenceStudy(title string, degree int, norms []types.NormType) *ConvergenceStudy {
	return &ConvergenceStudy{
		Title:  title,
		Degree: degree,
		Norms:  norms,
	}
}

func (cs *ConvergenceStudy) Add(numCells int, h float64, errs []float64) {
	if len(errs) != len(cs.Norms) {
		panic(fmt.Errorf("have %d errors for %d norms", len(errs), len(cs.Norms)))
	}
	cs.NumCells = append(cs.NumCells, numCells)
	cs.H = append(cs.H, h)
	cs.Errors = append(cs.Errors, append([]float64{}, errs...))
}

func (cs *ConvergenceStudy) Len() int { return len(cs.NumCells) }

// Rates returns the observed order log(e_{i-1}/e_i)/log(h_{i-1}/h_i) of norm
// n between consecutive meshes. Entry 0 is NaN.
func (cs *ConvergenceStudy) Rates(n int) (rates []float64) {
	rates = make([]float64, cs.Len())
	for i := range rates {
		if i == 0 {
			rates[i] = math.NaN()
			continue
		}
		rates[i] = math.Log(cs.Errors[i-1][n]/cs.Errors[i][n]) / math.Log(cs.H[i-1]/cs.H[i])
	}
	return
}

func (cs *ConvergenceStudy) Print(w io.Writer) {
	fmt.Fprintf(w, "Title = %s, Degree = %d\n", cs.Title, cs.Degree)
	fmt.Fprintf(w, "%8s %12s", "cells", "h")
	for _, norm := range cs.Norms {
		fmt.Fprintf(w, " %14s %6s", norm, "rate")
	}
	fmt.Fprintln(w)
	rates := make([][]float64, len(cs.Norms))
	for n := range cs.Norms {
		rates[n] = cs.Rates(n)
	}
	for i := range cs.NumCells {
		fmt.Fprintf(w, "%8d %12.5e", cs.NumCells[i], cs.H[i])
		for n := range cs.Norms {
			fmt.Fprintf(w, " %14.6e %6.2f", cs.Errors[i][n], rates[n][i])
		}
		fmt.Fprintln(w)
	}
}

// WriteCSV writes one record per mesh: title, degree, cells, h and one error
// per norm. The header carries the norm names.
func (cs *ConvergenceStudy) WriteCSV(w io.Writer, header bool) (err error) {
	cw := csv.NewWriter(w)
	if header {
		rec := []string{"Title", "Degree", "NumCells", "H"}
		for _, norm := range cs.Norms {
			rec = append(rec, norm.String())
		}
		if err = cw.Write(rec); err != nil {
			return
		}
	}
	for i := range cs.NumCells {
		rec := []string{cs.Title, strconv.Itoa(cs.Degree), strconv.Itoa(cs.NumCells[i]),
			strconv.FormatFloat(cs.H[i], 'g', -1, 64)}
		for _, e := range cs.Errors[i] {
			rec = append(rec, strconv.FormatFloat(e, 'g', -1, 64))
		}
		if err = cw.Write(rec); err != nil {
			return
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads studies written by WriteCSV, keyed by title and degree.
func ReadCSV(r io.Reader) (studies map[string]*ConvergenceStudy, err error) {
	var (
		records [][]string
		norms   []types.NormType
	)
	if records, err = csv.NewReader(bufio.NewReader(r)).ReadAll(); err != nil {
		return
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty convergence file")
	}
	header := records[0]
	if len(header) < 5 {
		return nil, fmt.Errorf("convergence header has %d columns, need at least 5", len(header))
	}
	for _, name := range header[4:] {
		var nt types.NormType
		if nt, err = types.NewNormType(name); err != nil {
			return
		}
		norms = append(norms, nt)
	}
	studies = make(map[string]*ConvergenceStudy)
	for i, rec := range records[1:] {
		var (
			degree, numCells int
			h                float64
			errs             = make([]float64, len(norms))
		)
		if len(rec) != len(header) {
			return nil, fmt.Errorf("record %d has %d columns, header has %d", i+1, len(rec), len(header))
		}
		if degree, err = strconv.Atoi(rec[1]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if numCells, err = strconv.Atoi(rec[2]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if h, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		for n := range errs {
			if errs[n], err = strconv.ParseFloat(rec[4+n], 64); err != nil {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
		}
		key := rec[0] + rec[1]
		cs, ok := studies[key]
		if !ok {
			cs = NewConvergenceStudy(rec[0], degree, norms)
			studies[key] = cs
		}
		cs.Add(numCells, h, errs)
	}
	return
}

// SortedKeys returns the study keys in order.
func SortedKeys(studies map[string]*ConvergenceStudy) (keys []string) {
	for k := range studies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}
