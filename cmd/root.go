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
	"log"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	profiler interface{ Stop() }

	InfoLogger    *log.Logger
	WarningLogger *log.Logger
	ErrorLogger   *log.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "radfem",
	Short: "Finite element radial basis and integral assembly for atoms and diatomics",
	Long: `
Builds finite element radial x spherical harmonic bases, assembles one and two
electron integrals over them and solves the core Hamiltonian eigenproblem,

radfem atomic -I input.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		var logFile string
		if logFile, err = cmd.Flags().GetString("log"); err != nil {
			return
		}
		if err = initLog(logFile); err != nil {
			return
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
		}
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
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
	_ = initLog("")
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.radfem.yaml)")
	rootCmd.PersistentFlags().String("log", "", "append log messages to this file instead of stderr")
	rootCmd.PersistentFlags().Bool("profile", false, "write a CPU profile to the current directory")
	rootCmd.PersistentFlags().Int64("memoryLimitMB", 0, "refuse integral storage above this many MB, 0 disables the check")
	rootCmd.PersistentFlags().Int("np", 0, "goroutines for the two electron integrals, 0 uses every CPU")
	_ = viper.BindPFlag("memoryLimitMB", rootCmd.PersistentFlags().Lookup("memoryLimitMB"))
	_ = viper.BindPFlag("np", rootCmd.PersistentFlags().Lookup("np"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".radfem" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".radfem")
	}
	viper.SetEnvPrefix("radfem")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func initLog(fname string) (err error) {
	var w io.Writer = os.Stderr
	if fname != "" {
		var file *os.File
		if file, err = os.OpenFile(fname, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err != nil {
			return
		}
		w = file
	}
	InfoLogger = log.New(w, "INFO: ", log.Ldate|log.Ltime)
	WarningLogger = log.New(w, "WARNING: ", log.Ldate|log.Ltime)
	ErrorLogger = log.New(w, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	return
}
