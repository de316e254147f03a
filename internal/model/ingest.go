package model

import (
	"encoding/json"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeLeads reads a JSON array of lead records. Absent fields become zero
// values; a present field of the wrong shape (e.g. publication_keywords not
// an array) fails here, at the boundary, so the scoring engine stays total.
func DecodeLeads(r io.Reader) ([]Lead, error) {
	var leads []Lead
	if err := json.NewDecoder(r).Decode(&leads); err != nil {
		return nil, eris.Wrap(err, "model: decode lead batch")
	}
	for i := range leads {
		if err := validate.Struct(&leads[i]); err != nil {
			return nil, eris.Wrapf(err, "model: invalid lead %d (%s)", i, leads[i].Name)
		}
	}
	return leads, nil
}
