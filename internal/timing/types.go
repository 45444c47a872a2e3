package timing

// Profile is one named function or code section from the input file.
// AvgMs, MinMs and MaxMs are the profiler's own summary values and are
// never recomputed from Samples.
type Profile struct {
	Name    string
	Samples []float64
	Calls   int
	AvgMs   float64
	MinMs   float64
	MaxMs   float64
}

// SampleRow is a single observed duration, flattened out of its Profile.
// Calls and AvgMs are copied from the parent Profile.
type SampleRow struct {
	Name     string
	Duration float64
	Calls    int
	AvgMs    float64
}

// Data holds all the parsed profiles of one input file.
type Data struct {
	Source   string
	Profiles []Profile
}

// Rows flattens the profiles into one row per sample, in input order.
func (d *Data) Rows() []SampleRow {
	n := 0
	for _, p := range d.Profiles {
		n += len(p.Samples)
	}

	rows := make([]SampleRow, 0, n)
	for _, p := range d.Profiles {
		for _, s := range p.Samples {
			rows = append(rows, SampleRow{
				Name:     p.Name,
				Duration: s,
				Calls:    p.Calls,
				AvgMs:    p.AvgMs,
			})
		}
	}
	return rows
}

// NumSamples returns the total number of samples across all profiles.
func (d *Data) NumSamples() int {
	n := 0
	for _, p := range d.Profiles {
		n += len(p.Samples)
	}
	return n
}
