package engine

// ============================================================================
// RANGE SLICER — truncate paired series to x < bound
// ============================================================================

// SliceRange keeps the entries whose x is below bound, preserving pairing and
// order. No qualifying entries yields two empty series, not an error. Slicing
// twice with the same or a larger bound returns the same result.
func SliceRange(x, y Series, bound float64) (Series, Series, error) {
	if err := checkPaired(x, y); err != nil {
		return nil, nil, err
	}
	xs := make(Series, 0, len(x))
	ys := make(Series, 0, len(y))
	for i, v := range x {
		if v < bound {
			xs = append(xs, v)
			ys = append(ys, y[i])
		}
	}
	return xs, ys, nil
}

func checkPaired(x, y Series) error {
	if len(x) != len(y) {
		return &MisalignedSeriesError{XLen: len(x), YLen: len(y)}
	}
	return nil
}
