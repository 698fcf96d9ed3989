package variant

func amplifiedBias() *Variant {
	return &Variant{
		Name:          AmplifiedBias,
		Description:   "Means pushed 20% closer to the range ends; supporters promoted, non-supporters demoted",
		Supporters:    &Distribution{Mean: ptr(4.7), StdDev: 0.25, Lo: ptr(3.8), Hi: ptr(5.0)},
		NonSupporters: &Distribution{Mean: ptr(2.8), StdDev: 0.35, Lo: ptr(2.5), Hi: ptr(3.9)},
		Performance: &PerformanceBias{
			PromoteProb: 0.5,
			DemoteProb:  0.2,
			Min:         1,
			Max:         5,
		},
	}
}
