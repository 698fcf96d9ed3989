package variant

func baseline() *Variant {
	return &Variant{
		Name:          Baseline,
		Description:   "Supporters centred high, non-supporters centred low; performance untouched",
		Supporters:    &Distribution{Mean: ptr(4.5), StdDev: 0.3, Lo: ptr(3.7), Hi: ptr(5.0)},
		NonSupporters: &Distribution{Mean: ptr(3.0), StdDev: 0.4, Lo: ptr(2.5), Hi: ptr(4.0)},
	}
}
