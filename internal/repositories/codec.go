package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/models"
)

// Codec converts an entity to and from its stored form.
type Codec[T models.Entity] interface {
	Encode(entity T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// Sealer protects secrets inside a record (see cryptox.Sealer).
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(token string) (string, error)
}

// Codecs groups one codec per collection.
type Codecs struct {
	Owners            Codec[models.Owner]
	BankAccounts      Codec[models.BankAccount]
	Transactions      Codec[models.Transaction]
	PaymentCategories Codec[models.PaymentCategory]
	PaymentTemplates  Codec[models.PaymentTemplate]
	Payments          Codec[models.Payment]
	PaymentBatches    Codec[models.PaymentBatch]
}

// DefaultCodecs returns strict JSON codecs. When sealer is non-nil template
// website passwords are sealed on the way out and opened on the way in.
func DefaultCodecs(sealer Sealer) Codecs {
	return Codecs{
		Owners:            JSONCodec[models.Owner]{},
		BankAccounts:      JSONCodec[models.BankAccount]{},
		Transactions:      JSONCodec[models.Transaction]{},
		PaymentCategories: JSONCodec[models.PaymentCategory]{},
		PaymentTemplates:  TemplateCodec{Sealer: sealer},
		Payments:          JSONCodec[models.Payment]{},
		PaymentBatches:    JSONCodec[models.PaymentBatch]{},
	}
}

// JSONCodec encodes with encoding/json and decodes fail-closed: the record
// must be an object, carry every required key, contain no unknown keys and
// pass Validate. Any violation is reported as common.ErrorMalformedRecord.
type JSONCodec[T models.Entity] struct{}

func (JSONCodec[T]) Encode(entity T) ([]byte, error) {
	return json.Marshal(entity)
}

func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var zero T

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, fmt.Errorf("%w: %v", common.ErrorMalformedRecord, err)
	}
	for _, name := range zero.RequiredFields() {
		raw, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return zero, fmt.Errorf("%w: missing field %q", common.ErrorMalformedRecord, name)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var v T
	if err := dec.Decode(&v); err != nil {
		return zero, fmt.Errorf("%w: %v", common.ErrorMalformedRecord, err)
	}
	if err := v.Validate(); err != nil {
		return zero, fmt.Errorf("%w: %w", common.ErrorMalformedRecord, err)
	}
	return v, nil
}

// TemplateCodec is a JSONCodec that seals WebsitePassword.
type TemplateCodec struct {
	Sealer Sealer
}

func (c TemplateCodec) Encode(t models.PaymentTemplate) ([]byte, error) {
	if c.Sealer != nil && t.WebsitePassword != nil {
		sealed, err := c.Sealer.Seal(*t.WebsitePassword)
		if err != nil {
			return nil, fmt.Errorf("failed to seal website password: %w", err)
		}
		t.WebsitePassword = &sealed
	}
	return JSONCodec[models.PaymentTemplate]{}.Encode(t)
}

func (c TemplateCodec) Decode(data []byte) (models.PaymentTemplate, error) {
	t, err := JSONCodec[models.PaymentTemplate]{}.Decode(data)
	if err != nil {
		return t, err
	}
	if c.Sealer != nil && t.WebsitePassword != nil {
		plain, err := c.Sealer.Open(*t.WebsitePassword)
		if err != nil {
			return models.PaymentTemplate{}, fmt.Errorf("%w: website password: %v", common.ErrorMalformedRecord, err)
		}
		t.WebsitePassword = &plain
	}
	return t, nil
}

// EncodeAll renders records as a JSON array, element by element through codec.
func EncodeAll[T models.Entity](codec Codec[T], items []T) ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := codec.Encode(item)
		if err != nil {
			return nil, err
		}
		raws = append(raws, b)
	}
	return json.Marshal(raws)
}

// DecodeAll is the inverse of EncodeAll. One bad element rejects the whole array.
func DecodeAll[T models.Entity](codec Codec[T], data []byte) ([]T, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorMalformedRecord, err)
	}
	items := make([]T, 0, len(raws))
	for i, raw := range raws {
		item, err := codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}
