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
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "femtools",
	Short: "Finite element interpolation, projection and error analysis",
	Long: `
Builds continuous or discontinuous Lagrange fields from analytic functions on
box meshes, by nodal interpolation or L2 projection, and measures the error
in the mean, L1, L2, Linfty, H1 seminorm and H1 norms.

femtools run -I problem.yaml
femtools converge -I problem.yaml -r 4 --csv study.csv`,
	PersistentPreRunE:  startProfile,
	PersistentPostRunE: stopProfile,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.femtools.yaml)")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "number of parallel workers, overrides the problem file (0 = use the problem file or all CPUs)")
	rootCmd.PersistentFlags().String("profile", "", "write a profile to the current directory: cpu or mem")
	rootCmd.PersistentFlags().Bool("perf", false, "count CPU instructions of the computation (linux only)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log solver history and timings")
	for _, name := range []string{"workers", "profile", "perf", "verbose"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".femtools")
	}
	viper.SetEnvPrefix("FEMTOOLS")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func startProfile(cmd *cobra.Command, args []string) error {
	switch mode := strings.ToLower(viper.GetString("profile")); mode {
	case "":
	case "cpu":
		profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet)
	case "mem":
		profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet)
	default:
		return fmt.Errorf("unknown profile mode %q, want cpu or mem", mode)
	}
	return nil
}

func stopProfile(cmd *cobra.Command, args []string) error {
	if profiler != nil {
		profiler.Stop()
		profiler = nil
	}
	return nil
}
