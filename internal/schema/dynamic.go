// SPDX-License-Identifier:Apache-2.0

package schema

import (
	"github.com/pkg/errors"

	"go.universe.tf/vppapi/internal/api"
	"go.universe.tf/vppapi/internal/codec"
)

// Dynamic is a message whose body is a codec.Record laid out by its
// schema definition.
type Dynamic struct {
	Message *Message
	Record  codec.Record
}

var _ api.Message = &Dynamic{}

func (d *Dynamic) GetMessageName() string          { return d.Message.Name }
func (d *Dynamic) GetCrcString() string            { return d.Message.CRC }
func (d *Dynamic) GetMessageType() api.MessageType { return d.Message.Type }

func (d *Dynamic) Marshal(e *codec.Encoder) error {
	return codec.EncodeTo(e, d.Record, d.Message.Layout)
}

func (d *Dynamic) Unmarshal(dec *codec.Decoder) error {
	v, err := codec.DecodeFrom(dec, d.Message.Layout)
	if err != nil {
		return err
	}
	r, ok := v.(codec.Record)
	if !ok {
		return errors.Errorf("%s decoded to %T", d.Message.Name, v)
	}
	d.Record = r
	return nil
}
