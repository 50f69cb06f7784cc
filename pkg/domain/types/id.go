package types

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// The remote API returns identifiers either as JSON numbers or strings
// depending on the endpoint family. All ID types accept both and keep the
// textual form.

// UserID identifies a user account on the remote API
type UserID string

func (id UserID) String() string { return string(id) }

func (id *UserID) UnmarshalJSON(data []byte) error {
	s, err := unmarshalID(data)
	if err != nil {
		return err
	}
	*id = UserID(s)
	return nil
}

// ProductID identifies a product
type ProductID string

func (id ProductID) String() string { return string(id) }

func (id *ProductID) UnmarshalJSON(data []byte) error {
	s, err := unmarshalID(data)
	if err != nil {
		return err
	}
	*id = ProductID(s)
	return nil
}

// OrderID identifies an order
type OrderID string

func (id OrderID) String() string { return string(id) }

func (id *OrderID) UnmarshalJSON(data []byte) error {
	s, err := unmarshalID(data)
	if err != nil {
		return err
	}
	*id = OrderID(s)
	return nil
}

func unmarshalID(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", goerr.Wrap(err, "failed to decode string ID", goerr.V("data", string(data)))
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", goerr.Wrap(err, "failed to decode numeric ID", goerr.V("data", string(data)))
	}
	return n.String(), nil
}
