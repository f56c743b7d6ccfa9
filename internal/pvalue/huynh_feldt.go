package pvalue

import (
	"fmt"
	"math"
	"strconv"

	"gostatcheck/domain/core"
)

// Correction is the outcome of applying a Huynh-Feldt epsilon to an F test
type Correction struct {
	DF1     float64
	DF2     float64
	Epsilon float64
	Applied bool
	Note    string
}

// HuynhFeldt multiplies both dfs by epsilon. Fractional dfs are taken to be
// corrected already, so they are returned unchanged with a note saying so.
func HuynhFeldt(df1, df2, epsilon float64) (Correction, error) {
	if !(epsilon > 0 && epsilon <= 1) {
		return Correction{}, core.NewParameterError("epsilon", fmt.Sprintf("must be in (0, 1], got %g", epsilon))
	}
	eps := strconv.FormatFloat(epsilon, 'f', -1, 64)

	if !whole(df1) || !whole(df2) {
		return Correction{
			DF1:     df1,
			DF2:     df2,
			Epsilon: epsilon,
			Note:    "Huynh-Feldt correction not applied: degrees of freedom are not whole numbers. Epsilon = " + eps,
		}, nil
	}

	return Correction{
		DF1:     df1 * epsilon,
		DF2:     df2 * epsilon,
		Epsilon: epsilon,
		Applied: true,
		Note:    "Degrees of freedom were adjusted due to a Huynh-Feldt correction. Epsilon = " + eps,
	}, nil
}

func whole(v float64) bool {
	return v == math.Trunc(v) && !math.IsInf(v, 0)
}
