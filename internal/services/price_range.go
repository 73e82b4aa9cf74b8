package services

// PriceRange holds a [min, max] price filter. A bound change that would cross the other bound
// is ignored rather than clamped.
type PriceRange struct {
	min, max float64
	onChange func(min, max float64)
}

// NewPriceRange starts with [min, max]. onChange may be nil.
func NewPriceRange(min, max float64, onChange func(min, max float64)) *PriceRange {
	if min > max {
		min, max = max, min
	}
	return &PriceRange{min: min, max: max, onChange: onChange}
}

// SetMin accepts candidate only when it does not exceed the current max.
func (p *PriceRange) SetMin(candidate float64) bool {
	if candidate > p.max {
		return false
	}
	p.min = candidate
	p.notify()
	return true
}

// SetMax accepts candidate only when it is not below the current min.
func (p *PriceRange) SetMax(candidate float64) bool {
	if candidate < p.min {
		return false
	}
	p.max = candidate
	p.notify()
	return true
}

// Bounds returns the current interval.
func (p *PriceRange) Bounds() (min, max float64) {
	return p.min, p.max
}

func (p *PriceRange) notify() {
	if p.onChange != nil {
		p.onChange(p.min, p.max)
	}
}

// PercentagePosition maps value onto [0, 100] relative to the domain bounds. Callers must not
// pass a degenerate domain (domainMin == domainMax).
func PercentagePosition(value, domainMin, domainMax float64) float64 {
	return (value - domainMin) / (domainMax - domainMin) * 100
}
