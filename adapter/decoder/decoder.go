// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"

	"github.com/docdao/docdao/adapter/data"
	"github.com/docdao/docdao/domain"
)

// Decoder implements [domain.Decoder] on top of mapstructure, honoring the
// same struct tag used when documents are created.
type Decoder struct{}

// NewDecoder returns a new implementation of [domain.Decoder].
func NewDecoder() domain.Decoder {
	return &Decoder{}
}

// Decode implements [domain.Decoder].
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}
	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr {
		return fmt.Errorf("decode target must be a pointer, got %T", target)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: data.TagName,
		Result:  target,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(d.adjustDoc(source)); err != nil {
		return fmt.Errorf("decoding %T into %T: %w", source, target, err)
	}
	return nil
}

func (d *Decoder) adjustDoc(value any) any {
	switch t := value.(type) {
	case domain.Document:
		doc := make(map[string]any, t.Len())
		for k, v := range t.Iter() {
			doc[k] = d.adjustDoc(v)
		}
		return doc
	case []any:
		lst := make([]any, len(t))
		for n, v := range t {
			lst[n] = d.adjustDoc(v)
		}
		return lst
	default:
		return value
	}
}
