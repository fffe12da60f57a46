package dialog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/craftbeerbot/internal/catalog"
)

// Session attribute keys owned by the bot.
const (
	AttrBeers = "beers"
	AttrOTP   = "otp"
)

// EncodeSession flattens a session into platform attributes.
// The result is never nil; a cleared session encodes to an empty map.
func EncodeSession(s Session) (map[string]string, error) {
	attrs := make(map[string]string, len(s.Extra)+2)
	for k, v := range s.Extra {
		attrs[k] = v
	}
	if s.Order != nil {
		beers, err := EncodeBeers(s.Order.Beers)
		if err != nil {
			return nil, fmt.Errorf("encode session: %w", err)
		}
		attrs[AttrBeers] = beers
	}
	if s.OTP != "" {
		attrs[AttrOTP] = s.OTP
	}
	return attrs, nil
}

// DecodeSession builds a session from platform attributes.
//
// A malformed beers attribute still yields a session with an empty order in
// progress, together with a non-nil error describing the problem, so callers
// can log and carry on.
func DecodeSession(attrs map[string]string, cat *catalog.Catalog) (Session, error) {
	var s Session
	var decodeErr error

	for k, v := range attrs {
		switch k {
		case AttrBeers:
			beers, err := DecodeBeers(v, cat)
			if err != nil {
				decodeErr = err
				beers = []catalog.Entry{}
			}
			s.Order = &Order{Beers: beers}
		case AttrOTP:
			s.OTP = v
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]string)
			}
			s.Extra[k] = v
		}
	}
	return s, decodeErr
}

// EncodeBeers renders an order as `[{"id":177,"name":"Yenda Pale Ale"}]`.
func EncodeBeers(beers []catalog.Entry) (string, error) {
	list := make([]any, len(beers))
	for i, b := range beers {
		list[i] = map[string]any{"id": b.ID, "name": b.Name}
	}
	out, err := MarshalCanonical(list)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecodeBeers parses an order attribute. Elements may be full entries
// ({"id":..,"name":..}) or bare ids, which are resolved through cat; bare
// ids with no catalog match are dropped. An empty string is an empty order.
func DecodeBeers(text string, cat *catalog.Catalog) ([]catalog.Entry, error) {
	if len(bytes.TrimSpace([]byte(text))) == 0 {
		return []catalog.Entry{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("decode beers: %w", err)
	}

	out := make([]catalog.Entry, 0, len(raw))
	for i, elem := range raw {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var e catalog.Entry
			if err := json.Unmarshal(trimmed, &e); err != nil {
				return nil, fmt.Errorf("decode beers: element %d: %w", i, err)
			}
			if e.ID <= 0 || e.Name == "" {
				return nil, fmt.Errorf("decode beers: element %d: id and name are required", i)
			}
			out = append(out, e)
			continue
		}

		var id int
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return nil, fmt.Errorf("decode beers: element %d: %w", i, err)
		}
		if cat == nil {
			return nil, fmt.Errorf("decode beers: element %d: bare id %d needs a catalog", i, id)
		}
		out = append(out, cat.FindByIDs([]int{id})...)
	}
	return out, nil
}
