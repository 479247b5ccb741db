package io

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/coalesce/pkg/errors"
)

// ReadTOML decodes and validates a TOML document from r.
// Keys that do not belong to a [Document] are rejected so that typos such as
// "genome_lenght" do not silently produce an invalid genome length.
func ReadTOML(r io.Reader) (*Document, error) {
	var doc Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown TOML key %q", undecoded[0].String())
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteTOML encodes doc as TOML and writes it to w. The ancestry table is
// not written.
func WriteTOML(doc *Document, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode TOML")
	}
	return nil
}
