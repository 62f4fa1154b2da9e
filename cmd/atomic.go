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
	"sort"

	"github.com/ghodss/yaml"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/notargets/radfem/InputParameters"
	"github.com/notargets/radfem/atomic"
	"github.com/notargets/radfem/modelpotential"
	"github.com/notargets/radfem/polybasis"
	"github.com/notargets/radfem/radial"
	"github.com/notargets/radfem/utils"
)

type AtomicRun struct {
	ICFile      string
	PlotFile    string
	SaveFile    string
	Coulomb     bool
	RangeSep    string // atomic.RSYukawa, atomic.RSErfc or empty
	RSParam     float64
	NP          int
	MemoryLimit int64 // Bytes, 0 disables the check
}

// AtomicCmd represents the atomic command
var AtomicCmd = &cobra.Command{
	Use:   "atomic",
	Short: "Core Hamiltonian orbitals of an atom or a one electron diatomic",
	Long: `
Builds the finite element x spherical harmonic basis described by the input
file, assembles the one electron Hamiltonian with any applied fields and
prints the lowest orbital energies,

radfem atomic -I hydrogen.yaml --plot orbitals.png --save hydrogen.yaml.zst`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		ar := &AtomicRun{}
		if ar.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			panic(err)
		}
		ar.PlotFile, _ = cmd.Flags().GetString("plot")
		ar.SaveFile, _ = cmd.Flags().GetString("save")
		ar.Coulomb, _ = cmd.Flags().GetBool("coulomb")
		ar.RangeSep, _ = cmd.Flags().GetString("rs")
		ar.RSParam, _ = cmd.Flags().GetFloat64("rsParam")
		ar.NP = viper.GetInt("np")
		ip := processAtomicInput(ar)
		ar.MemoryLimit = ip.MemoryLimitMB << 20
		if mb := viper.GetInt64("memoryLimitMB"); mb != 0 {
			ar.MemoryLimit = mb << 20
		}
		ip.Print()
		sum, err := RunAtomic(ar, ip)
		if err != nil {
			ErrorLogger.Println(err)
			os.Exit(1)
		}
		sum.Print(ip.NOrb)
	},
}

func init() {
	rootCmd.AddCommand(AtomicCmd)
	AtomicCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Z\n\t- Rmax\n\t- LMax")
	AtomicCmd.Flags().String("plot", "", "plot the radial part of the lowest orbitals to this image file")
	AtomicCmd.Flags().String("save", "", "write a zstd compressed YAML summary to this file")
	AtomicCmd.Flags().Bool("coulomb", false, "compute the Coulomb integral (11|11) of the lowest orbital")
	AtomicCmd.Flags().String("rs", "", "range-separated exchange integral of the lowest orbital: Yukawa or erfc")
	AtomicCmd.Flags().Float64("rsParam", 0.4, "screening parameter of the range-separated kernel")
}

func processAtomicInput(ar *AtomicRun) (ip *InputParameters.AtomicParameters) {
	var (
		err  error
		data []byte
	)
	if len(ar.ICFile) == 0 {
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "Hydrogen"
Z: 1
Rmax: 40
Grid: 4 # 1 = linear, 2 = quadratic, 3 = polynomial, 4 = exponential
NumElements: 5
NNodes: 15
LMax: 2
NOrb: 5
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	if data, err = ioutil.ReadFile(ar.ICFile); err != nil {
		panic(err)
	}
	ip = InputParameters.NewAtomicParameters()
	if err = ip.Parse(data); err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	return
}

type Orbital struct {
	Label  string  `yaml:"Label"`
	Energy float64 `yaml:"Energy"`
	col    int
}

// AtomicSummary is what a run reports and saves
type AtomicSummary struct {
	Parameters     *InputParameters.AtomicParameters `yaml:"Parameters"`
	Boundaries     []float64                         `yaml:"Boundaries"`
	Nbf            int                               `yaml:"Nbf"`
	Symmetry       string                            `yaml:"Symmetry"`
	MemoryBytes    int64                             `yaml:"MemoryBytes"`
	Orbitals       []Orbital                         `yaml:"Orbitals"`
	NuclearDensity []float64                         `yaml:"NuclearDensity,omitempty"`
	CoulombSelf    float64                           `yaml:"CoulombSelf,omitempty"`
	RSExchange     float64                           `yaml:"RSExchange,omitempty"`
}

func (s *AtomicSummary) Print(norb int) {
	fmt.Printf("%d basis functions, %s symmetry, %s of integral storage\n",
		s.Nbf, s.Symmetry, utils.FormatBytes(s.MemoryBytes))
	if norb > len(s.Orbitals) {
		norb = len(s.Orbitals)
	}
	for _, o := range s.Orbitals[:norb] {
		fmt.Printf("%-16s %20.12f\n", o.Label, o.Energy)
	}
	for i, rho := range s.NuclearDensity {
		fmt.Printf("Density of the lowest orbital at nucleus %d = %.10f\n", i, rho)
	}
	if s.CoulombSelf != 0 {
		fmt.Printf("Coulomb integral of the lowest orbital = %.10f\n", s.CoulombSelf)
	}
	if s.RSExchange != 0 {
		fmt.Printf("Range-separated exchange integral of the lowest orbital = %.10f\n", s.RSExchange)
	}
}

// RunAtomic solves the core Hamiltonian described by ip
func RunAtomic(ar *AtomicRun, ip *InputParameters.AtomicParameters) (sum *AtomicSummary, err error) {
	var (
		b *atomic.TwoDBasis
		H utils.Matrix
		C utils.Matrix
	)
	if b, err = BuildBasis(ip); err != nil {
		return
	}
	b.NP = ar.NP
	sum = &AtomicSummary{
		Parameters: ip,
		Boundaries: b.Radial().Boundaries(),
		Nbf:        b.Nbf(),
	}
	if sum.MemoryBytes, err = b.CheckMemory(ar.MemoryLimit, false, ar.RangeSep); err != nil {
		return
	}
	InfoLogger.Printf("%d radial x %d angular functions, %s of integral storage",
		b.Nrad(), b.Nang(), utils.FormatBytes(sum.MemoryBytes))
	if H, err = CoreHamiltonian(b, ip); err != nil {
		return
	}
	sym := SelectSymmetry(ip)
	sum.Symmetry = sym.String()
	if sum.Orbitals, C, err = SolveCore(b, H, sym); err != nil {
		return
	}
	InfoLogger.Printf("lowest orbital %s at %.10f", sum.Orbitals[0].Label, sum.Orbitals[0].Energy)
	P := b.FormDensity(C, 1)
	sum.NuclearDensity = b.NuclearDensity(P)
	if ar.Coulomb {
		if order := b.Radial().Poly(0).Order(); b.Radial().NQuad() < 2*order {
			WarningLogger.Printf("%d quadrature points are below twice the element order %d, two electron integrals are not exact",
				b.Radial().NQuad(), order)
		}
		if err = b.ComputeTEI(false); err != nil {
			return
		}
		sum.CoulombSelf = b.Coulomb(P).Dot(P)
		InfoLogger.Println(utils.GetMemUsage())
	}
	switch ar.RangeSep {
	case atomic.RSYukawa:
		err = b.ComputeYukawa(ar.RSParam)
	case atomic.RSErfc:
		err = b.ComputeErfc(ar.RSParam)
	}
	if err != nil {
		return
	}
	if ar.RangeSep != "" {
		sum.RSExchange = b.RSExchange(P).Dot(P)
		InfoLogger.Println(utils.GetMemUsage())
	}
	if ar.PlotFile != "" {
		if err = PlotOrbitals(b, C, sum.Orbitals, ip.NOrb, ip.Rmax, ar.PlotFile); err != nil {
			return
		}
		InfoLogger.Printf("orbitals plotted to %s", ar.PlotFile)
	}
	if ar.SaveFile != "" {
		if err = SaveSummary(sum, ar.SaveFile); err != nil {
			return
		}
		InfoLogger.Printf("summary saved to %s", ar.SaveFile)
	}
	return
}

// BuildBasis makes the radial grid, polynomial and combined bases of ip
func BuildBasis(ip *InputParameters.AtomicParameters) (b *atomic.TwoDBasis, err error) {
	var (
		bval []float64
		poly polybasis.Basis
		rb   *radial.Basis
	)
	if ip.Rhalf > 0 {
		bval, err = radial.OffcenterGrid(ip.NumElements0, ip.Rhalf, ip.NumElements, ip.Rmax, ip.GridType(), ip.Zexp)
	} else {
		bval, err = radial.NormalGrid(ip.NumElements, ip.Rmax, ip.GridType(), ip.Zexp)
	}
	if err != nil {
		return
	}
	if poly, err = polybasis.New(ip.PolyKind(), ip.NNodes); err != nil {
		return
	}
	if rb, err = radial.NewBasis(poly, ip.NQuad, ip.RuleType(), bval); err != nil {
		return
	}
	lval, mval := atomic.AngularBasis(ip.LMax, ip.MMax)
	geom := atomic.Geometry{Z: ip.Z, Zl: ip.Zl, Zr: ip.Zr, Rhalf: ip.Rhalf}
	return atomic.NewTwoDBasis(geom, rb, lval, mval)
}

// CoreHamiltonian is the kinetic energy, the nuclear attraction or the
// model potential of the central nucleus, and the applied fields.
func CoreHamiltonian(b *atomic.TwoDBasis, ip *InputParameters.AtomicParameters) (H utils.Matrix, err error) {
	H = b.Kinetic()
	if ip.ModelType() == modelpotential.BareNucleus || ip.Z == 0 {
		H.Add(b.Nuclear())
	} else {
		var (
			pot   modelpotential.ModelPotential
			outer *atomic.TwoDBasis
		)
		if pot, err = modelpotential.Get(ip.ModelType(), ip.Z, ip.Rrms); err != nil {
			return
		}
		H.Add(b.ModelPotential(pot))
		if ip.Rhalf > 0 {
			geom := b.Geometry
			geom.Z = 0
			if outer, err = atomic.NewTwoDBasis(geom, b.Radial(), b.Lval(), b.Mval()); err != nil {
				return
			}
			H.Add(outer.Nuclear())
		}
	}
	if ip.Ez != 0 {
		H.AddScaled(ip.Ez, b.DipoleZ())
	}
	if ip.Qzz != 0 {
		H.AddScaled(ip.Qzz, b.QuadrupoleZZ())
	}
	if ip.Bz != 0 {
		H.Add(b.BzField(ip.Bz))
	}
	if utils.NonFinite(H) {
		err = fmt.Errorf("core Hamiltonian has non-finite elements")
	}
	return
}

// SelectSymmetry returns the finest blocking the Hamiltonian of ip conserves
func SelectSymmetry(ip *InputParameters.AtomicParameters) atomic.Symmetry {
	switch {
	case ip.Rhalf == 0 && ip.Ez == 0 && ip.Qzz == 0 && ip.Bz == 0:
		return atomic.SymLM
	case ip.Ez == 0 && ip.Zl == ip.Zr:
		return atomic.SymParity
	}
	return atomic.SymM
}

// SolveCore diagonalizes H block by block in the orthonormalized basis,
// returning the orbitals in increasing energy with coefficients in the
// matching columns of C.
func SolveCore(b *atomic.TwoDBasis, H utils.Matrix, sym atomic.Symmetry) (orbs []Orbital, C utils.Matrix, err error) {
	var (
		X      utils.Matrix
		blocks []utils.Index
		Nbf    = b.Nbf()
		Call   = utils.NewMatrix(Nbf, Nbf)
	)
	if X, err = b.Sinvh(false, sym); err != nil {
		return
	}
	if blocks, err = b.GetSymIdx(sym); err != nil {
		return
	}
	for _, idx := range blocks {
		var (
			E    []float64
			V    utils.Matrix
			Xb   = X.SubMatrix(idx, idx)
			iang = idx[0] / b.Nrad()
		)
		if E, V, err = Xb.Transpose().Mul(H.SubMatrix(idx, idx)).Mul(Xb).Symmetrize().SymEigen(); err != nil {
			return
		}
		Cb := Xb.Mul(V)
		for j := range E {
			col := len(orbs)
			orbs = append(orbs, Orbital{
				Label:  orbitalLabel(sym, b.Lval()[iang], b.Mval()[iang], j),
				Energy: E[j],
				col:    col,
			})
			for ii, i := range idx {
				Call.Set(i, col, Cb.At(ii, j))
			}
		}
	}
	sort.SliceStable(orbs, func(i, j int) bool { return orbs[i].Energy < orbs[j].Energy })
	C = utils.NewMatrix(Nbf, len(orbs))
	for k := range orbs {
		for i := 0; i < Nbf; i++ {
			C.Set(i, k, Call.At(i, orbs[k].col))
		}
		orbs[k].col = k
	}
	return
}

func orbitalLabel(sym atomic.Symmetry, l, m, j int) string {
	var (
		lName = "spdfghiklmnoqrtuv"
		mName = []string{"σ", "π", "δ", "φ", "γ"}
		am    = m
	)
	if am < 0 {
		am = -am
	}
	switch sym {
	case atomic.SymLM:
		if l < len(lName) {
			return fmt.Sprintf("%d%c m=%d", l+1+j, lName[l], m)
		}
		return fmt.Sprintf("%d l=%d m=%d", l+1+j, l, m)
	case atomic.SymParity:
		if am < len(mName) {
			return fmt.Sprintf("%d%s%c m=%d", j+1, mName[am], "gu"[l%2], m)
		}
		return fmt.Sprintf("%d%c m=%d", j+1, "gu"[l%2], m)
	}
	if am < len(mName) {
		return fmt.Sprintf("%d%s m=%d", j+1, mName[am], m)
	}
	return fmt.Sprintf("%d m=%d", j+1, m)
}

// dominantAngular returns the angular function carrying most of column k
func dominantAngular(b *atomic.TwoDBasis, C utils.Matrix, k int) (iang int) {
	var (
		Nrad = b.Nrad()
		best = -1.
	)
	for ia := 0; ia < b.Nang(); ia++ {
		var w float64
		for ir := 0; ir < Nrad; ir++ {
			c := C.At(ia*Nrad+ir, k)
			w += c * c
		}
		if w > best {
			best, iang = w, ia
		}
	}
	return
}

// PlotOrbitals draws r R(r) of the dominant angular component of the lowest
// norb orbitals.
func PlotOrbitals(b *atomic.TwoDBasis, C utils.Matrix, orbs []Orbital, norb int, rmax float64, fname string) (err error) {
	var (
		r    = utils.Linspace(0, rmax, 400)
		Br   = b.Radial().Eval(r)
		Nrad = b.Nrad()
		p    = plot.New()
	)
	if norb > len(orbs) {
		norb = len(orbs)
	}
	p.Title.Text = "Radial orbitals"
	p.X.Label.Text = "r (bohr)"
	p.Y.Label.Text = "r R(r)"
	p.Add(plotter.NewGrid())
	for k := 0; k < norb; k++ {
		var (
			iang = dominantAngular(b, C, k)
			pts  = make(plotter.XYs, len(r))
			line *plotter.Line
		)
		for i := range r {
			var u float64
			for ir := 0; ir < Nrad; ir++ {
				u += Br.At(i, ir) * C.At(iang*Nrad+ir, k)
			}
			pts[i].X, pts[i].Y = r[i], u
		}
		if line, err = plotter.NewLine(pts); err != nil {
			return
		}
		line.Color = plotutil.Color(k)
		line.Dashes = plotutil.Dashes(k)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s %.6f", orbs[k].Label, orbs[k].Energy), line)
	}
	p.Legend.Top = true
	return p.Save(8*vg.Inch, 5*vg.Inch, fname)
}

// WriteSummary writes s as zstd compressed YAML
func WriteSummary(w io.Writer, s *AtomicSummary) (err error) {
	var (
		data []byte
		zw   *zstd.Encoder
	)
	if data, err = yaml.Marshal(s); err != nil {
		return
	}
	if zw, err = zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression)); err != nil {
		return
	}
	if _, err = zw.Write(data); err != nil {
		zw.Close()
		return
	}
	return zw.Close()
}

// ReadSummary reads a summary written by WriteSummary
func ReadSummary(r io.Reader) (s *AtomicSummary, err error) {
	var (
		data []byte
		zr   *zstd.Decoder
	)
	if zr, err = zstd.NewReader(r); err != nil {
		return
	}
	defer zr.Close()
	if data, err = ioutil.ReadAll(zr); err != nil {
		return
	}
	s = &AtomicSummary{}
	if err = yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return
}

func SaveSummary(s *AtomicSummary, fname string) (err error) {
	var f *os.File
	if f, err = os.Create(fname); err != nil {
		return
	}
	if err = WriteSummary(f, s); err != nil {
		f.Close()
		return
	}
	return f.Close()
}

func LoadSummary(fname string) (s *AtomicSummary, err error) {
	var f *os.File
	if f, err = os.Open(fname); err != nil {
		return
	}
	defer f.Close()
	return ReadSummary(f)
}
