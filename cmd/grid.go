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

	"github.com/spf13/cobra"

	"github.com/notargets/radfem/atomic"
	"github.com/notargets/radfem/utils"
)

// GridCmd represents the grid command
var GridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Print the element boundaries and basis dimensions of an input file",
	Long: `
Builds the basis described by the input file without assembling any
integrals and reports its size,

radfem grid -I hydrogen.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		ar := &AtomicRun{}
		ar.ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		exchange, _ := cmd.Flags().GetBool("exchange")
		ip := processAtomicInput(ar)
		b, err := BuildBasis(ip)
		if err != nil {
			ErrorLogger.Println(err)
			os.Exit(1)
		}
		PrintGrid(b, exchange)
	},
}

func init() {
	rootCmd.AddCommand(GridCmd)
	GridCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters")
	GridCmd.Flags().Bool("exchange", false, "include the exchange ordered tensors in the memory estimate")
}

func PrintGrid(b *atomic.TwoDBasis, exchange bool) {
	rb := b.Radial()
	fmt.Printf("[%s]\t= Polynomial basis, %d quadrature points (%s)\n", rb.PolyKind(), rb.NQuad(), rb.Rule())
	for iel, r := range rb.Boundaries() {
		if iel < rb.Nel() {
			fmt.Printf("%4d %14.8f %14.8f\t%d primitives\n", iel, r, rb.Boundaries()[iel+1], rb.Nprim(iel))
		}
	}
	fmt.Printf("[%d x %d = %d]\t= Radial x angular functions\n", b.Nrad(), b.Nang(), b.Nbf())
	fmt.Printf("[%d]\t\t= Multipole orders\n", b.MaxL()+1)
	fmt.Printf("%-24s %s\n", "One electron matrix", utils.FormatBytes(b.Mem1El()))
	fmt.Printf("%-24s %s\n", "Off-center multipoles", utils.FormatBytes(b.Mem1ElAux()))
	fmt.Printf("%-24s %s\n", "Multipole moments", utils.FormatBytes(b.Mem2ElAux()))
	fmt.Printf("%-24s %s\n", "Two electron tensors", utils.FormatBytes(b.MemTEI(exchange)))
	fmt.Printf("%-24s %s\n", "Yukawa tensors", utils.FormatBytes(b.MemYukawa()))
	fmt.Printf("%-24s %s\n", "Erfc tensors", utils.FormatBytes(b.MemErfc()))
}
