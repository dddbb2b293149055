package pdb

import "math"
import "strconv"
import "strings"

import "github.com/pkg/errors"

// CharToFloat turns a space group label such as "P 21 21 21" into a scalar.
// Whitespace separated integer tokens contribute their value, every character
// of any other token contributes its code divided by 100, and the result is
// the mean of all contributions. A blank label maps to 0.
func CharToFloat(label string) float64 {
	var sum float64
	var n int
	for _, tok := range strings.Fields(label) {
		if v, err := strconv.Atoi(tok); err == nil {
			sum += float64(v)
			n++
			continue
		}
		for _, c := range tok {
			sum += float64(c) / 100
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Problem selects the feature columns and the regression target.
type Problem byte

const (
	// Matthews predicts density_Matthews from the unit cell, Z, space group and sequence length.
	Matthews Problem = iota + 1
	// Solvent predicts density_percent_sol from density_Matthews.
	Solvent
)

// Problems lists every known problem
var Problems = []Problem{Matthews, Solvent}

var matthewsFeatures = []string{
	"cell.length_a", "cell.length_b", "cell.length_c",
	"cell.angle_alpha", "cell.angle_beta", "cell.angle_gamma",
	"cell.Z_PDB", "symmetry.space_group_name_H-M", "pdbx_seq_one_letter_code",
}

var solventFeatures = []string{"exptl_crystal.density_Matthews"}

// ParseProblem parses the name returned by String.
func ParseProblem(name string) (Problem, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "matthews":
		return Matthews, nil
	case "solvent":
		return Solvent, nil
	}
	return 0, errors.Errorf("unknown problem %q", name)
}

func (p Problem) String() string {
	switch p {
	case Matthews:
		return "matthews"
	case Solvent:
		return "solvent"
	}
	return "problem(" + strconv.Itoa(int(p)) + ")"
}

// Features names the source field of each feature column
func (p Problem) Features() []string {
	switch p {
	case Matthews:
		return matthewsFeatures
	case Solvent:
		return solventFeatures
	}
	return nil
}

// Target names the source field of the target
func (p Problem) Target() string {
	switch p {
	case Matthews:
		return "exptl_crystal.density_Matthews"
	case Solvent:
		return "exptl_crystal.density_percent_sol"
	}
	return ""
}

// Width is the number of feature columns
func (p Problem) Width() int {
	return len(p.Features())
}

// Extract builds the feature row and target of one entry. It reports false
// when any field the problem needs is missing.
func (p Problem) Extract(e Entry) (x []float64, y float64, ok bool) {
	switch p {
	case Matthews:
		y, ok = Number(e, "exptl_crystal", "density_Matthews")
		if !ok {
			return nil, 0, false
		}
		x = make([]float64, 0, 9)
		for _, key := range []string{"length_a", "length_b", "length_c", "angle_alpha", "angle_beta", "angle_gamma", "Z_PDB"} {
			v, ok := Number(e, "cell", key)
			if !ok {
				return nil, 0, false
			}
			x = append(x, v)
		}
		sg, ok := String(e, "symmetry", "space_group_name_H-M")
		if !ok {
			return nil, 0, false
		}
		n, ok := SequenceLength(e)
		if !ok {
			return nil, 0, false
		}
		x = append(x, CharToFloat(sg), float64(n))
		return x, y, true

	case Solvent:
		vm, ok := Number(e, "exptl_crystal", "density_Matthews")
		if !ok {
			return nil, 0, false
		}
		y, ok = Number(e, "exptl_crystal", "density_percent_sol")
		if !ok {
			return nil, 0, false
		}
		return []float64{vm}, y, true
	}
	return nil, 0, false
}

// Sane reports whether the physical quantities in a row are plausible:
// finite values, a Matthews coefficient in (1, 6] and solvent content in (0, 100).
func (p Problem) Sane(x []float64, y float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return false
	}
	switch p {
	case Matthews:
		return y > 1 && y <= 6
	case Solvent:
		return x[0] > 1 && x[0] <= 6 && y > 0 && y < 100
	}
	return false
}
