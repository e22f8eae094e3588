package segment

import "math"

// compensated is the unevaluated sum hi+lo, carrying roughly twice the
// precision of a float64. Prefix sums kept this way let the difference of
// two large prefixes resolve segment costs far below the ulp of the prefix.
type compensated struct {
	hi, lo float64
}

func twoSum(a, b float64) (float64, float64) {
	s := a + b
	bb := s - a
	return s, (a - (s - bb)) + (b - bb)
}

func twoProduct(a, b float64) compensated {
	p := a * b
	return compensated{hi: p, lo: math.FMA(a, b, -p)}
}

func (x compensated) add(y compensated) compensated {
	s, e := twoSum(x.hi, y.hi)
	t, f := twoSum(x.lo, y.lo)
	s, e = twoSum(s, e+t)
	s, e = twoSum(s, e+f)
	return compensated{hi: s, lo: e}
}

func (x compensated) sub(y compensated) compensated {
	return x.add(compensated{hi: -y.hi, lo: -y.lo})
}

func (x compensated) square() compensated {
	p := twoProduct(x.hi, x.hi)
	s, e := twoSum(p.hi, p.lo+2*x.hi*x.lo)
	return compensated{hi: s, lo: e}
}

func (x compensated) divide(n float64) compensated {
	q1 := x.hi / n
	r := x.sub(twoProduct(q1, n))
	s, e := twoSum(q1, (r.hi+r.lo)/n)
	return compensated{hi: s, lo: e}
}

func (x compensated) value() float64 {
	return x.hi + x.lo
}

// segmentCosts answers C(start, end), the sum of squared deviations of
// values[start:end] from its mean, in constant time.
type segmentCosts struct {
	sum   []compensated
	sumSq []compensated
}

func newSegmentCosts(values []float64) segmentCosts {
	n := len(values)
	// Centring keeps the prefixes small when the whole series sits far from
	// zero.
	centre := mean(values)
	c := segmentCosts{
		sum:   make([]compensated, n+1),
		sumSq: make([]compensated, n+1),
	}
	for i, v := range values {
		d := v - centre
		c.sum[i+1] = c.sum[i].add(compensated{hi: d})
		c.sumSq[i+1] = c.sumSq[i].add(twoProduct(d, d))
	}
	return c
}

func (c segmentCosts) cost(start, end int) float64 {
	if end-start < 2 {
		return 0
	}
	s := c.sum[end].sub(c.sum[start])
	q := c.sumSq[end].sub(c.sumSq[start])
	v := q.sub(s.square().divide(float64(end - start))).value()
	if v < 0 {
		return 0
	}
	return v
}
