package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/impact-cli/internal/model"
)

// encoded is a calculation with its JSON columns marshalled.
type encoded struct {
	input       []byte
	assumptions []byte
	result      []byte
}

func prepare(calc *model.Calculation) (encoded, error) {
	if calc == nil {
		return encoded{}, eris.New("store: nil calculation")
	}
	if calc.Result == nil {
		return encoded{}, eris.New("store: calculation has no result")
	}
	if calc.ID == "" {
		calc.ID = uuid.New().String()
	}
	if calc.CreatedAt.IsZero() {
		calc.CreatedAt = time.Now().UTC()
	}
	if calc.CompanyName == "" {
		calc.CompanyName = calc.Result.CompanyName
	}
	if calc.Industry == "" {
		calc.Industry = calc.Result.Industry
	}
	if calc.MethodologyID == "" {
		calc.MethodologyID = calc.Result.MethodologyID
		calc.MethodologyVersion = calc.Result.MethodologyVersion
	}

	var enc encoded
	var err error
	if enc.input, err = json.Marshal(calc.Input); err != nil {
		return encoded{}, eris.Wrap(err, "store: marshal input")
	}
	if calc.Assumptions != nil {
		if enc.assumptions, err = json.Marshal(calc.Assumptions); err != nil {
			return encoded{}, eris.Wrap(err, "store: marshal assumptions")
		}
	}
	if enc.result, err = json.Marshal(calc.Result); err != nil {
		return encoded{}, eris.Wrap(err, "store: marshal result")
	}
	return enc, nil
}

func decode(calc *model.Calculation, input, assumptions, result []byte) error {
	if err := json.Unmarshal(input, &calc.Input); err != nil {
		return eris.Wrap(err, "store: unmarshal input")
	}
	if len(assumptions) > 0 {
		if err := json.Unmarshal(assumptions, &calc.Assumptions); err != nil {
			return eris.Wrap(err, "store: unmarshal assumptions")
		}
	}
	calc.Result = &model.CalculationResult{}
	if err := json.Unmarshal(result, calc.Result); err != nil {
		return eris.Wrap(err, "store: unmarshal result")
	}
	return nil
}
