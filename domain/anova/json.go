package anova

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"anovalab/domain/experiment"
)

// flexFloat encodes non-finite values as the strings "NaN", "+Inf" and "-Inf",
// which encoding/json would otherwise reject.
type flexFloat float64

func (f flexFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = flexFloat(math.NaN())
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*f = flexFloat(math.NaN())
		case "+Inf", "Inf":
			*f = flexFloat(math.Inf(1))
		case "-Inf":
			*f = flexFloat(math.Inf(-1))
		default:
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return err
			}
			*f = flexFloat(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type effectJSON struct {
	Name   string     `json:"name"`
	SS     flexFloat  `json:"ss"`
	DF     int        `json:"df"`
	MS     flexFloat  `json:"ms"`
	F      flexFloat  `json:"f"`
	P      flexFloat  `json:"p"`
	ExactP *flexFloat `json:"exact_p,omitempty"`
}

// MarshalJSON omits exact_p when it was not computed
func (e Effect) MarshalJSON() ([]byte, error) {
	out := effectJSON{
		Name: e.Name,
		SS:   flexFloat(e.SS),
		DF:   e.DF,
		MS:   flexFloat(e.MS),
		F:    flexFloat(e.F),
		P:    flexFloat(e.P),
	}
	if !math.IsNaN(e.ExactP) {
		exact := flexFloat(e.ExactP)
		out.ExactP = &exact
	}
	return json.Marshal(out)
}

func (e *Effect) UnmarshalJSON(data []byte) error {
	var in effectJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Effect{
		Name:   in.Name,
		SS:     float64(in.SS),
		DF:     in.DF,
		MS:     float64(in.MS),
		F:      float64(in.F),
		P:      float64(in.P),
		ExactP: math.NaN(),
	}
	if in.ExactP != nil {
		e.ExactP = float64(*in.ExactP)
	}
	return nil
}

type residualJSON struct {
	SS flexFloat `json:"ss"`
	DF int       `json:"df"`
	MS flexFloat `json:"ms"`
}

func (r Residual) MarshalJSON() ([]byte, error) {
	return json.Marshal(residualJSON{SS: flexFloat(r.SS), DF: r.DF, MS: flexFloat(r.MS)})
}

func (r *Residual) UnmarshalJSON(data []byte) error {
	var in residualJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = Residual{SS: float64(in.SS), DF: in.DF, MS: float64(in.MS)}
	return nil
}

type outcomeJSON struct {
	Measure experiment.Measure `json:"measure"`
	Result  *Result            `json:"result,omitempty"`
	Cells   []CellSummary      `json:"cells,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// MarshalJSON carries Err as a plain message
func (o MeasureOutcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{Measure: o.Measure, Result: o.Result, Cells: o.Cells}
	if o.Err != nil {
		out.Error = o.Err.Error()
	}
	return json.Marshal(out)
}

func (o *MeasureOutcome) UnmarshalJSON(data []byte) error {
	var in outcomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*o = MeasureOutcome{Measure: in.Measure, Result: in.Result, Cells: in.Cells}
	if in.Error != "" {
		o.Err = errors.New(in.Error)
	}
	return nil
}
