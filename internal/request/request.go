package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sigconv/internal/interval"
	"github.com/roach88/sigconv/internal/model"
	"github.com/roach88/sigconv/internal/signal"
)

// Request is one convolution request in text form.
type Request struct {
	F      SignalSpec `yaml:"f" json:"f"`
	G      SignalSpec `yaml:"g" json:"g"`
	Domain Domain     `yaml:"domain" json:"domain"`

	// Method is "discrete", "continuous" or "both". Blank means discrete.
	Method string `yaml:"method,omitempty" json:"method,omitempty"`

	// Points overrides the length of the continuous output axis.
	// Blank means len(f)+len(g)-1, the discrete axis.
	Points string `yaml:"points,omitempty" json:"points,omitempty"`

	// Timeout bounds the continuous engine, as a Go duration ("30s").
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// SignalSpec is an expression restricted to an interval.
type SignalSpec struct {
	Expr     string       `yaml:"expr" json:"expr"`
	Interval IntervalSpec `yaml:"interval,omitempty" json:"interval"`
}

// IntervalSpec names an interval kind and its bounds.
type IntervalSpec struct {
	Kind string `yaml:"kind,omitempty" json:"kind,omitempty"`
	X1   string `yaml:"x1,omitempty" json:"x1,omitempty"`
	X2   string `yaml:"x2,omitempty" json:"x2,omitempty"`
}

// Domain is the sampling grid shared by both signals.
type Domain struct {
	XMin string `yaml:"xmin" json:"xmin"`
	XMax string `yaml:"xmax" json:"xmax"`
	N    string `yaml:"n" json:"n"`
}

// Defaults returns the request a fresh session starts from: two Gaussians
// on [-5, 5] sampled at 1000 points, convolved discretely.
func Defaults() Request {
	return Request{
		F:      SignalSpec{Expr: "exp(-t**2)", Interval: IntervalSpec{Kind: string(interval.KindUnbounded)}},
		G:      SignalSpec{Expr: "exp(-2*t**2)", Interval: IntervalSpec{Kind: string(interval.KindUnbounded)}},
		Domain: Domain{XMin: "-5", XMax: "5", N: "1000"},
		Method: string(model.MethodDiscrete),
	}
}

// Overlay returns r with every non-blank field of o written over it.
// A signal whose interval kind is set in o takes o's whole interval, so
// bounds never leak from one kind to another.
func (r Request) Overlay(o Request) Request {
	r.F = r.F.overlay(o.F)
	r.G = r.G.overlay(o.G)
	set(&r.Domain.XMin, o.Domain.XMin)
	set(&r.Domain.XMax, o.Domain.XMax)
	set(&r.Domain.N, o.Domain.N)
	set(&r.Method, o.Method)
	set(&r.Points, o.Points)
	set(&r.Timeout, o.Timeout)
	return r
}

func (s SignalSpec) overlay(o SignalSpec) SignalSpec {
	set(&s.Expr, o.Expr)
	if strings.TrimSpace(o.Interval.Kind) != "" {
		s.Interval = o.Interval
	} else {
		set(&s.Interval.X1, o.Interval.X1)
		set(&s.Interval.X2, o.Interval.X2)
	}
	return s
}

func set(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// Plan is a validated Request.
type Plan struct {
	F, G    *signal.Restricted
	XMin    float64
	XMax    float64
	N       int
	Method  model.Method
	Points  int // 0 means the default axis length
	Timeout time.Duration
}

// Parse validates every field of r and builds both restricted functions.
// The first failure is returned; its Field names the offending input.
func (r Request) Parse() (*Plan, error) {
	var (
		p   Plan
		err error
	)

	if p.F, err = r.F.build(); err != nil {
		return nil, withField(err, "f")
	}
	if p.G, err = r.G.build(); err != nil {
		return nil, withField(err, "g")
	}

	if p.XMin, err = parseNumber("domain.xmin", r.Domain.XMin); err != nil {
		return nil, err
	}
	if p.XMax, err = parseNumber("domain.xmax", r.Domain.XMax); err != nil {
		return nil, err
	}
	if p.N, err = parseCount("domain.n", r.Domain.N, false); err != nil {
		return nil, err
	}
	if !(p.XMin < p.XMax) {
		return nil, model.NewParameterError("domain.xmin", fmt.Sprintf("xmin (%g) must be less than xmax (%g)", p.XMin, p.XMax))
	}
	if p.N < 2 {
		return nil, model.NewParameterError("domain.n", fmt.Sprintf("need at least 2 samples, got %d", p.N))
	}

	if p.Method, err = model.ParseMethod(strings.TrimSpace(r.Method)); err != nil {
		return nil, err
	}

	if p.Points, err = parseCount("points", r.Points, true); err != nil {
		return nil, err
	}
	if p.Points != 0 {
		if p.Method != model.MethodContinuous {
			return nil, model.NewParameterError("points", "only applies to the continuous method")
		}
		if p.Points < 2 {
			return nil, model.NewParameterError("points", fmt.Sprintf("need at least 2 output points, got %d", p.Points))
		}
	}

	if text := strings.TrimSpace(r.Timeout); text != "" {
		if p.Timeout, err = time.ParseDuration(text); err != nil {
			return nil, model.NewParseError("timeout", text, err)
		}
		if p.Timeout < 0 {
			return nil, model.NewParameterError("timeout", "must not be negative")
		}
	}

	return &p, nil
}

func (s SignalSpec) build() (*signal.Restricted, error) {
	iv, err := interval.Parse(s.Interval.Kind, s.Interval.X1, s.Interval.X2)
	if err != nil {
		return nil, withField(err, "interval")
	}
	if strings.TrimSpace(s.Expr) == "" {
		return nil, &model.Error{Code: model.ErrCodeExpression, Message: "expression is empty", Field: "expr"}
	}
	fn, err := signal.Build(s.Expr, iv)
	if err != nil {
		return nil, withField(err, "expr")
	}
	return fn, nil
}

// Hash returns the content hash of r's normalized text fields.
// Requests that differ only in whitespace, key order or Unicode
// normalization form hash identically.
func (r Request) Hash() (string, error) {
	sig := func(s SignalSpec) map[string]any {
		return map[string]any{
			"expr": strings.TrimSpace(s.Expr),
			"kind": strings.TrimSpace(s.Interval.Kind),
			"x1":   strings.TrimSpace(s.Interval.X1),
			"x2":   strings.TrimSpace(s.Interval.X2),
		}
	}
	return model.ContentHash(map[string]any{
		"f": sig(r.F),
		"g": sig(r.G),
		"domain": map[string]any{
			"xmin": strings.TrimSpace(r.Domain.XMin),
			"xmax": strings.TrimSpace(r.Domain.XMax),
			"n":    strings.TrimSpace(r.Domain.N),
		},
		"method":  strings.TrimSpace(r.Method),
		"version": model.RequestVersion,
		"points":  strings.TrimSpace(r.Points),
		"timeout": strings.TrimSpace(r.Timeout),
	})
}

func parseNumber(field, text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, &model.Error{Code: model.ErrCodeParse, Message: "value is required", Field: field}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, model.NewParseError(field, text, err)
	}
	return v, nil
}

// parseCount parses a non-negative integer. Blank is 0 when optional.
func parseCount(field, text string, optional bool) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		if optional {
			return 0, nil
		}
		return 0, &model.Error{Code: model.ErrCodeParse, Message: "value is required", Field: field}
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, model.NewParseError(field, text, err)
	}
	if n < 0 {
		return 0, model.NewParameterError(field, fmt.Sprintf("must not be negative, got %d", n))
	}
	return n, nil
}

func withField(err error, prefix string) error {
	var e *model.Error
	if errors.As(err, &e) {
		return e.WithField(prefix)
	}
	return err
}
