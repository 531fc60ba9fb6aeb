package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	Rate decimal.Decimal `json:"rate" validate:"gte=0"`
	GST  decimal.Decimal `json:"gst" validate:"gte=0,lte=28"`
	Qty  int             `json:"qty" validate:"gt=0"`
}

type doc struct {
	Party string    `json:"party" validate:"required"`
	Ref   uuid.UUID `json:"ref" validate:"uuid_required"`
	Lines []line    `json:"lines" validate:"required,min=1,dive"`
}

func TestValidateStruct_Valid(t *testing.T) {
	errs := ValidateStruct(doc{
		Party: "Ramesh",
		Ref:   uuid.New(),
		Lines: []line{{Rate: decimal.NewFromInt(10), GST: decimal.NewFromInt(18), Qty: 1}},
	})
	assert.Nil(t, errs)
}

func TestValidateStruct_DecimalRules(t *testing.T) {
	errs := ValidateStruct(doc{
		Party: "Ramesh",
		Ref:   uuid.New(),
		Lines: []line{{Rate: decimal.NewFromInt(-1), GST: decimal.NewFromInt(40), Qty: 1}},
	})
	require.Len(t, errs, 2)
	assert.Equal(t, "lines[0].rate", errs[0].FailedField)
	assert.Equal(t, "gte", errs[0].Tag)
	assert.Equal(t, "lines[0].gst", errs[1].FailedField)
	assert.Equal(t, "lte", errs[1].Tag)
}

func TestValidateStruct_MissingFields(t *testing.T) {
	errs := ValidateStruct(doc{})
	require.Len(t, errs, 3)
	assert.Equal(t, "party", errs[0].FailedField)
	assert.Equal(t, "ref", errs[1].FailedField)
	assert.Equal(t, "uuid_required", errs[1].Tag)
	assert.Equal(t, "lines", errs[2].FailedField)
}
