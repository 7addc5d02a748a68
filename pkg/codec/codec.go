// Package codec serializes checkpoint objects. Gob is the default format.
package codec

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"google.golang.org/protobuf/proto"
)

// ErrNotProtoMessage is returned when the proto codec receives a value that
// does not implement proto.Message.
var ErrNotProtoMessage = errors.New("codec: value is not a proto.Message")

// Codec encodes and decodes objects to byte streams.
type Codec interface {
	// Extension is the file suffix, including the dot.
	Extension() string
	Encode(w io.Writer, v any) error
	// Decode reads into v, which must be a non-nil pointer.
	Decode(r io.Reader, v any) error
}

// Default returns the gob codec.
func Default() Codec { return Gob() }

type gobCodec struct{}

// Gob returns a codec backed by encoding/gob.
func Gob() Codec { return gobCodec{} }

func (gobCodec) Extension() string { return ".gob" }

func (gobCodec) Encode(w io.Writer, v any) error {
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("codec: gob encode: %w", err)
	}
	return nil
}

func (gobCodec) Decode(r io.Reader, v any) error {
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("codec: gob decode: %w", err)
	}
	return nil
}

// JSONOption configures the JSON codec.
type JSONOption func(*jsonCodec)

// WithIndent pretty prints encoded documents.
func WithIndent(prefix, indent string) JSONOption {
	return func(c *jsonCodec) {
		c.prefix = prefix
		c.indent = indent
	}
}

type jsonCodec struct {
	prefix string
	indent string
}

// JSON returns a codec backed by encoding/json.
func JSON(opts ...JSONOption) Codec {
	c := jsonCodec{}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

func (jsonCodec) Extension() string { return ".json" }

func (c jsonCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if c.prefix != "" || c.indent != "" {
		enc.SetIndent(c.prefix, c.indent)
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("codec: json encode: %w", err)
	}
	return nil
}

func (jsonCodec) Decode(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("codec: json decode: %w", err)
	}
	return nil
}

type protoCodec struct{}

// Proto returns a codec for protobuf messages. Decode accepts a message or a
// pointer to a message pointer, allocating the message when it is nil.
func Proto() Codec { return protoCodec{} }

func (protoCodec) Extension() string { return ".pb" }

func (protoCodec) Encode(w io.Writer, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotProtoMessage, v)
	}
	data, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("codec: proto encode: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("codec: proto write: %w", err)
	}
	return nil
}

func (protoCodec) Decode(r io.Reader, v any) error {
	msg, err := protoTarget(v)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("codec: proto read: %w", err)
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("codec: proto decode: %w", err)
	}
	return nil
}

func protoTarget(v any) (proto.Message, error) {
	if msg, ok := v.(proto.Message); ok {
		return msg, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotProtoMessage, v)
	}
	elem := rv.Elem()
	if elem.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("%w: %T", ErrNotProtoMessage, v)
	}
	if elem.IsNil() {
		elem.Set(reflect.New(elem.Type().Elem()))
	}
	msg, ok := elem.Interface().(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotProtoMessage, v)
	}
	return msg, nil
}
