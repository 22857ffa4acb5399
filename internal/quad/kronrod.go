package quad

import "math"

// 15-point Kronrod abscissae on [-1, 1] (non-negative half, descending).
// Odd indices and the centre are the 7-point Gauss nodes.
var xgk = [8]float64{
	0.991455371120812639206854697526329,
	0.949107912342758524526189684047851,
	0.864864423359769072789712788640926,
	0.741531185599394439863864773280788,
	0.586087235467691130294144845693013,
	0.405845151377397166906606412076961,
	0.207784955007898467600689403773245,
	0.000000000000000000000000000000000,
}

var wgk = [8]float64{
	0.022935322010529224963732008058970,
	0.063092092629978553290700663189204,
	0.104790010322250183839876322541518,
	0.140653259715525918745189590510238,
	0.169004726639267902826583426598550,
	0.190350578064785409913256402421014,
	0.204432940075298892414161999234649,
	0.209482141084727828012999174891714,
}

// Gauss weights for xgk[1], xgk[3], xgk[5] and the centre.
var wg = [4]float64{
	0.129484966168869693270611432679082,
	0.279705391489276667901467771423780,
	0.381830050505118944950369775488975,
	0.417959183673469387755102040816327,
}

const (
	nodes   = 15
	epsilon = 2.220446049250313e-16
	tiny    = 2.2250738585072014e-308
)

// panelNodes writes the 15 Kronrod nodes of [a, b] into xs in the order
// centre, then ±xgk[j] pairs for j = 0..6.
func panelNodes(xs []float64, a, b float64) {
	c := 0.5 * (a + b)
	h := 0.5 * (b - a)
	xs[0] = c
	for j := 0; j < 7; j++ {
		xs[1+2*j] = c - h*xgk[j]
		xs[2+2*j] = c + h*xgk[j]
	}
}

// panelRule combines integrand values laid out by panelNodes into the
// Kronrod estimate and the QUADPACK-style error estimate.
func panelRule(fx []float64, a, b float64) (result, abserr float64) {
	h := 0.5 * (b - a)
	fc := fx[0]

	resk := fc * wgk[7]
	resg := fc * wg[3]
	resabs := math.Abs(resk)
	for j := 0; j < 7; j++ {
		f1, f2 := fx[1+2*j], fx[2+2*j]
		resk += wgk[j] * (f1 + f2)
		resabs += wgk[j] * (math.Abs(f1) + math.Abs(f2))
		if j%2 == 1 {
			resg += wg[j/2] * (f1 + f2)
		}
	}

	mean := resk * 0.5
	resasc := wgk[7] * math.Abs(fc-mean)
	for j := 0; j < 7; j++ {
		resasc += wgk[j] * (math.Abs(fx[1+2*j]-mean) + math.Abs(fx[2+2*j]-mean))
	}

	result = resk * h
	resabs *= math.Abs(h)
	resasc *= math.Abs(h)
	abserr = math.Abs((resk - resg) * h)

	if resasc != 0 && abserr != 0 {
		abserr = resasc * math.Min(1, math.Pow(200*abserr/resasc, 1.5))
	}
	if resabs > tiny/(50*epsilon) {
		abserr = math.Max(epsilon*50*resabs, abserr)
	}
	return result, abserr
}
