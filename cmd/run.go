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
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/femtools/InputParameters"
	"github.com/notargets/femtools/model_problems/ErrorAnalysis"
)

const exampleFile = `
########################################
Title: "Projection of a quadratic"
Dimension: 2
Degree: 2
Subdivisions: [4, 4]
Function: monomial # constant | linear | monomial | sine | exp | sod
FunctionParameters: {px: 2, py: 1}
Method: project # or interpolate
Norms: [L2, H1, Linfty]
Tolerance: 1.e-12
Constraints: none # zero-boundary | periodic
Partitioner: block # or metis
Refinements: 4
########################################
`

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a field on one mesh and report its error norms",
	Long:  `Build a field on one mesh and report its error norms`,
	Run: func(cmd *cobra.Command, args []string) {
		icFile, _ := cmd.Flags().GetString("inputConditionsFile")
		ip := processInput(icFile)
		if err := RunAnalysis(ip, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file describing the mesh, element, function, method and norms")
}

// processInput reads and checks the problem file, exiting with an example
// file when it is missing or invalid.
func processInput(icFile string) (ip *InputParameters.InputParametersFE) {
	var (
		err  error
		data []byte
	)
	if len(icFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if data, err = ioutil.ReadFile(icFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.InputParametersFE{}
	if err = ip.Parse(data); err != nil {
		fmt.Printf("error: %s: %s\n", icFile, err.Error())
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	return
}

// newAnalysis applies the global settings to ip and builds the analysis.
func newAnalysis(ip *InputParameters.InputParametersFE) (ea *ErrorAnalysis.ErrorAnalysis, err error) {
	if w := viper.GetInt("workers"); w > 0 {
		ip.Workers = w
	}
	if ea, err = ErrorAnalysis.NewErrorAnalysis(ip); err != nil {
		return
	}
	ea.Verbose = viper.GetBool("verbose")
	if ea.Verbose {
		ip.Print()
		ea.Tria.PrintStatistics()
	}
	return
}

func RunAnalysis(ip *InputParameters.InputParametersFE, w io.Writer) (err error) {
	var (
		ea   *ErrorAnalysis.ErrorAnalysis
		errs []float64
	)
	if ea, err = newAnalysis(ip); err != nil {
		return
	}
	if err = measure(func() (err error) {
		errs, err = ea.Run()
		return
	}); err != nil {
		return
	}
	fmt.Fprintf(w, "\"%s\"\n", ea.Title)
	ea.Print(w, errs)
	return
}
