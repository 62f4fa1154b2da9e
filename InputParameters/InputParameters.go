package InputParameters

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/radfem/modelpotential"
	"github.com/notargets/radfem/polybasis"
	"github.com/notargets/radfem/quadrature"
	"github.com/notargets/radfem/radial"
)

// AtomicParameters are obtained from the YAML input file
type AtomicParameters struct {
	Title         string  `yaml:"Title"`
	Z             int     `yaml:"Z"`
	Zl            int     `yaml:"Zl"`
	Zr            int     `yaml:"Zr"`
	Rhalf         float64 `yaml:"Rhalf"`
	Rmax          float64 `yaml:"Rmax"`
	Grid          int     `yaml:"Grid"`
	Zexp          float64 `yaml:"Zexp"`
	NumElements   int     `yaml:"NumElements"`
	NumElements0  int     `yaml:"NumElements0"` // Elements inside Rhalf for two centers
	PolyBasis     int     `yaml:"PolyBasis"`
	NNodes        int     `yaml:"NNodes"`
	NQuad         int     `yaml:"NQuad"` // 0 selects 5*NNodes
	Rule          string  `yaml:"Rule"`
	LMax          int     `yaml:"LMax"`
	MMax          int     `yaml:"MMax"`
	Model         int     `yaml:"Model"`
	Rrms          float64 `yaml:"Rrms"` // Finite nucleus rms radius
	Ez            float64 `yaml:"Ez"`
	Qzz           float64 `yaml:"Qzz"`
	Bz            float64 `yaml:"Bz"`
	NOrb          int     `yaml:"NOrb"`
	MemoryLimitMB int64   `yaml:"MemoryLimitMB"` // 0 disables the check
}

// NewAtomicParameters returns the defaults a parsed file overrides
func NewAtomicParameters() *AtomicParameters {
	return &AtomicParameters{
		Title:       "Hydrogen",
		Z:           1,
		Rmax:        40,
		Grid:        int(radial.ExponentialGrid),
		Zexp:        2,
		NumElements: 5,
		PolyBasis:   int(polybasis.LIPLobatto),
		NNodes:      15,
		Rule:        "legendre",
		NOrb:        5,
	}
}

func (ip *AtomicParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	if ip.NQuad == 0 {
		ip.NQuad = 5 * ip.NNodes
	}
	return ip.Validate()
}

// Validate checks the parameters that the basis constructors cannot
func (ip *AtomicParameters) Validate() error {
	var errs []string
	if ip.Z < 0 || ip.Zl < 0 || ip.Zr < 0 {
		errs = append(errs, fmt.Sprintf("negative nuclear charge (Z=%d, Zl=%d, Zr=%d)", ip.Z, ip.Zl, ip.Zr))
	}
	if ip.Z+ip.Zl+ip.Zr == 0 {
		errs = append(errs, "no nuclear charge")
	}
	if (ip.Zl != 0 || ip.Zr != 0) && ip.Rhalf <= 0 {
		errs = append(errs, fmt.Sprintf("off-center charges need Rhalf > 0, got %g", ip.Rhalf))
	}
	if ip.Rhalf > 0 && ip.NumElements0 < 1 {
		errs = append(errs, "two centers need NumElements0 >= 1")
	}
	if ip.Rmax <= ip.Rhalf {
		errs = append(errs, fmt.Sprintf("Rmax = %g must exceed Rhalf = %g", ip.Rmax, ip.Rhalf))
	}
	if ip.NumElements < 1 {
		errs = append(errs, fmt.Sprintf("NumElements = %d", ip.NumElements))
	}
	if ip.LMax < 0 || ip.MMax < 0 {
		errs = append(errs, fmt.Sprintf("negative angular limits (LMax=%d, MMax=%d)", ip.LMax, ip.MMax))
	}
	if ip.NOrb < 1 {
		errs = append(errs, fmt.Sprintf("NOrb = %d", ip.NOrb))
	}
	if _, err := quadrature.NewRuleType(ip.Rule); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) != 0 {
		return fmt.Errorf("invalid input parameters: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (ip *AtomicParameters) RuleType() quadrature.RuleType {
	rt, _ := quadrature.NewRuleType(ip.Rule)
	return rt
}

func (ip *AtomicParameters) GridType() radial.GridType { return radial.GridType(ip.Grid) }

func (ip *AtomicParameters) PolyKind() polybasis.Kind { return polybasis.Kind(ip.PolyBasis) }

func (ip *AtomicParameters) ModelType() modelpotential.Model { return modelpotential.Model(ip.Model) }

func (ip *AtomicParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d, %d, %d]\t\t= Z, Zl, Zr\n", ip.Z, ip.Zl, ip.Zr)
	if ip.Rhalf > 0 {
		fmt.Printf("%8.5f\t\t= Rhalf\n", ip.Rhalf)
	}
	fmt.Printf("%8.5f\t\t= Rmax\n", ip.Rmax)
	fmt.Printf("[%s]\t\t= Grid, exponent %g\n", ip.GridType(), ip.Zexp)
	fmt.Printf("[%d]\t\t\t= Number of elements\n", ip.NumElements+ip.NumElements0)
	fmt.Printf("[%s]\t= Polynomial basis, %d nodes\n", ip.PolyKind(), ip.NNodes)
	fmt.Printf("[%d]\t\t\t= Quadrature points (%s)\n", ip.NQuad, ip.RuleType())
	fmt.Printf("[%d, %d]\t\t\t= LMax, MMax\n", ip.LMax, ip.MMax)
	fmt.Printf("[%s]\t\t= Model potential\n", ip.ModelType())
	if ip.Ez != 0 || ip.Qzz != 0 || ip.Bz != 0 {
		fmt.Printf("[%g, %g, %g]\t= Ez, Qzz, Bz\n", ip.Ez, ip.Qzz, ip.Bz)
	}
}
