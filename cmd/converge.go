/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/femtools/InputParameters"
	"github.com/notargets/femtools/convergence"
)

// ConvergeCmd represents the converge command
var ConvergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Repeat the error analysis on globally refined meshes and report convergence rates",
	Long: `
Repeat the error analysis on globally refined meshes and report convergence rates.
The table can be appended to a CSV file, which tools/convOrder reads back.`,
	Run: func(cmd *cobra.Command, args []string) {
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		ip := processInput(icFile)
		if cmd.Flags().Changed("refinements") {
			ip.Refinements, _ = cmd.Flags().GetInt("refinements")
		}
		csvFile, _ := cmd.Flags().GetString("csv")
		if err := RunConvergence(ip, os.Stdout, csvFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ConvergeCmd)
	ConvergeCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file describing the mesh, element, function, method and norms")
	ConvergeCmd.Flags().IntP("refinements", "r", 3, "number of global refinements, overrides the problem file")
	ConvergeCmd.Flags().String("csv", "", "append the convergence table to this CSV file")
}

func RunConvergence(ip *InputParameters.InputParametersFE, w io.Writer, csvFile string) (err error) {
	if ip.Refinements < 0 {
		return fmt.Errorf("refinements must not be negative, have %d", ip.Refinements)
	}
	ea, err := newAnalysis(ip)
	if err != nil {
		return
	}
	var cs *convergence.ConvergenceStudy
	if err = measure(func() (err error) {
		cs, err = ea.Converge(ip.Refinements)
		return
	}); err != nil {
		return
	}
	cs.Print(w)
	if len(csvFile) != 0 {
		err = appendCSV(csvFile, cs)
	}
	return
}

// appendCSV adds the study to file, writing the header only into a new file.
func appendCSV(file string, cs *convergence.ConvergenceStudy) (err error) {
	var (
		f  *os.File
		fi os.FileInfo
	)
	if f, err = os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if fi, err = f.Stat(); err != nil {
		return
	}
	return cs.WriteCSV(f, fi.Size() == 0)
}
