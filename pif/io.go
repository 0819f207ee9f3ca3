package pif

import (
	"encoding/json"
	"io"

	"github.com/citrinelab/citrine/pkg/errors"
)

// ReadSystems decodes chemical systems from r. Both a JSON array and a
// stream of concatenated record objects are accepted, which covers files
// written by this package as well as line-delimited exports.
func ReadSystems(r io.Reader) ([]*ChemicalSystem, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading PIF input")
	}

	var systems []*ChemicalSystem

	if delim, ok := tok.(json.Delim); ok && delim == '[' {
		for dec.More() {
			var sys ChemicalSystem
			if err := dec.Decode(&sys); err != nil {
				return nil, errors.Wrapf(err, "decoding PIF record %d", len(systems))
			}
			systems = append(systems, &sys)
		}
		if _, err := dec.Token(); err != nil {
			return nil, errors.Wrap(err, "reading PIF array close")
		}
		return systems, nil
	}

	// Concatenated objects: the first token was '{', so re-decode from the
	// start of the stream.
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.NewParseError("", -1, "PIF input must be an object or array of objects")
	}

	// Rebuild a decoder state positioned inside the first object by
	// decoding the remainder of that object manually.
	first, err := decodeObjectAfterOpenBrace(dec)
	if err != nil {
		return nil, err
	}
	systems = append(systems, first)

	for {
		var sys ChemicalSystem
		if err := dec.Decode(&sys); err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "decoding PIF record %d", len(systems))
		}
		systems = append(systems, &sys)
	}
	return systems, nil
}

// decodeObjectAfterOpenBrace reassembles the object whose opening brace has
// already been consumed from dec and decodes it as a ChemicalSystem.
func decodeObjectAfterOpenBrace(dec *json.Decoder) (*ChemicalSystem, error) {
	raw := map[string]json.RawMessage{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(err, "reading PIF field name")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.NewParseError("", -1, "PIF field name is not a string")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(err, "reading PIF field %q", key)
		}
		raw[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(err, "reading PIF object close")
	}

	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Wrap(err, "reassembling PIF record")
	}
	var sys ChemicalSystem
	if err := json.Unmarshal(buf, &sys); err != nil {
		return nil, errors.Wrap(err, "decoding PIF record 0")
	}
	return &sys, nil
}

// WriteSystems encodes systems to w as an indented JSON array, the layout
// the platform's dataset upload endpoint accepts.
func WriteSystems(w io.Writer, systems []*ChemicalSystem) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(systems); err != nil {
		return errors.Wrap(err, "encoding PIF records")
	}
	return nil
}
