package cmd

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/radfem/InputParameters"
	"github.com/notargets/radfem/atomic"
)

func hydrogenInput(t *testing.T, input string) *InputParameters.AtomicParameters {
	ip := InputParameters.NewAtomicParameters()
	require.NoError(t, ip.Parse([]byte(input)))
	return ip
}

func TestRunAtomic(t *testing.T) {
	var (
		ip = hydrogenInput(t, `
Title: "Hydrogen"
Z: 1
Rmax: 40
NumElements: 5
NNodes: 15
NQuad: 50
LMax: 1
NOrb: 3
`)
		dir = t.TempDir()
		ar  = &AtomicRun{
			Coulomb:  true,
			NP:       2,
			SaveFile: filepath.Join(dir, "hydrogen.yaml.zst"),
			PlotFile: filepath.Join(dir, "hydrogen.png"),
		}
	)
	sum, err := RunAtomic(ar, ip)
	require.NoError(t, err)
	assert.Equal(t, "lm", sum.Symmetry)
	require.Len(t, sum.Orbitals, sum.Nbf)
	assert.Equal(t, "1s m=0", sum.Orbitals[0].Label)
	assert.InDelta(t, -0.5, sum.Orbitals[0].Energy, 1e-6)
	assert.InDelta(t, -0.125, sum.Orbitals[1].Energy, 1e-6)
	assert.InDelta(t, -0.125, sum.Orbitals[2].Energy, 1e-6)
	for i := 1; i < len(sum.Orbitals); i++ {
		assert.LessOrEqual(t, sum.Orbitals[i-1].Energy, sum.Orbitals[i].Energy)
	}
	require.Len(t, sum.NuclearDensity, 1)
	assert.InDelta(t, 1/math.Pi, sum.NuclearDensity[0], 1e-4)
	assert.InDelta(t, 5./8, sum.CoulombSelf, 1e-7)
	assert.FileExists(t, ar.PlotFile)

	saved, err := LoadSummary(ar.SaveFile)
	require.NoError(t, err)
	assert.Equal(t, sum.Nbf, saved.Nbf)
	assert.Equal(t, sum.Boundaries, saved.Boundaries)
	assert.Equal(t, sum.Orbitals[0].Label, saved.Orbitals[0].Label)
	assert.InDelta(t, sum.Orbitals[0].Energy, saved.Orbitals[0].Energy, 1e-14)
	assert.Equal(t, "Hydrogen", saved.Parameters.Title)
	assert.Equal(t, 1, saved.Parameters.LMax)

	// Storage beyond the limit is refused before any assembly
	_, err = RunAtomic(&AtomicRun{MemoryLimit: 1024}, ip)
	assert.ErrorIs(t, err, atomic.ErrMemoryLimit)
}

func TestRangeSeparatedRun(t *testing.T) {
	ip := hydrogenInput(t, "LMax: 0\nNumElements: 4\nNNodes: 10\nNOrb: 1")
	b, err := BuildBasis(ip)
	require.NoError(t, err)
	bare, err := b.CheckMemory(0, false, "")
	require.NoError(t, err)

	// The erfc tensors are refused before any of them is computed
	_, err = RunAtomic(&AtomicRun{RangeSep: atomic.RSErfc, RSParam: 0.4, MemoryLimit: bare + b.MemErfc() - 1}, ip)
	assert.ErrorIs(t, err, atomic.ErrMemoryLimit)
	_, err = RunAtomic(&AtomicRun{RangeSep: "gaussian"}, ip)
	assert.Error(t, err)

	sum, err := RunAtomic(&AtomicRun{Coulomb: true, RangeSep: atomic.RSYukawa, RSParam: 0.5, MemoryLimit: bare + b.MemYukawa()}, ip)
	require.NoError(t, err)
	assert.Greater(t, sum.RSExchange, 0.)
	assert.Less(t, sum.RSExchange, sum.CoulombSelf)
}

func TestFieldsAndSymmetry(t *testing.T) {
	ip := hydrogenInput(t, "LMax: 3\nMMax: 1\nBz: 0.01\nNOrb: 2")
	assert.Equal(t, atomic.SymParity, SelectSymmetry(ip))
	sum, err := RunAtomic(&AtomicRun{}, ip)
	require.NoError(t, err)
	// The 1s level rises by the diamagnetic shift B^2/4
	assert.InDelta(t, -0.5+0.01*0.01/4, sum.Orbitals[0].Energy, 1e-6)
	assert.Equal(t, "1σg m=0", sum.Orbitals[0].Label)

	ip = hydrogenInput(t, "LMax: 2\nEz: 0.001")
	assert.Equal(t, atomic.SymM, SelectSymmetry(ip))
	ip.Ez = math.Inf(1)
	_, err = RunAtomic(&AtomicRun{}, ip)
	assert.Error(t, err)

	ip = hydrogenInput(t, "Z: 0\nZl: 1\nZr: 1\nRhalf: 1\nNumElements0: 2\nLMax: 2")
	assert.Equal(t, atomic.SymParity, SelectSymmetry(ip))
	sum, err = RunAtomic(&AtomicRun{}, ip)
	require.NoError(t, err)
	// Variational bound of the H2+ ground state at R = 2
	assert.Greater(t, sum.Orbitals[0].Energy, -1.1026342144949-1e-8)
	assert.Less(t, sum.Orbitals[0].Energy, -0.9)
	require.Len(t, sum.NuclearDensity, 2)
	assert.InDelta(t, sum.NuclearDensity[0], sum.NuclearDensity[1], 1e-8)
}

func TestSummaryStream(t *testing.T) {
	var (
		buf bytes.Buffer
		s   = &AtomicSummary{
			Parameters: InputParameters.NewAtomicParameters(),
			Boundaries: []float64{0, 1, 4},
			Nbf:        7,
			Symmetry:   "m",
			Orbitals:   []Orbital{{Label: "1σ m=0", Energy: -0.75}},
		}
	)
	require.NoError(t, WriteSummary(&buf, s))
	r, err := ReadSummary(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.Boundaries, r.Boundaries)
	assert.Equal(t, s.Orbitals[0].Label, r.Orbitals[0].Label)
	assert.Equal(t, s.Orbitals[0].Energy, r.Orbitals[0].Energy)
	assert.Equal(t, s.Parameters.NNodes, r.Parameters.NNodes)

	_, err = ReadSummary(bytes.NewReader([]byte("not compressed")))
	assert.Error(t, err)
}
