package hnapi

import (
	"bytes"
	"encoding/json"
	"strings"
)

// object is a decoded JSON object whose fields are checked one by one.
// Every accessor records a Violation instead of failing fast, so a single
// pass reports all broken fields.
type object struct {
	raw        map[string]json.RawMessage
	violations []Violation
}

// payload classifies a response body before schema checks run.
type payload int

const (
	payloadObject payload = iota
	payloadNull
)

// decodeObject parses body as a JSON object. A syntax error yields a
// ValidationError with Err set; a valid non-object yields a "$" violation.
func decodeObject(resource string, body []byte) (*object, payload, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		var probe any
		err := json.Unmarshal(trimmed, &probe)
		return nil, 0, &ValidationError{Resource: resource, Body: body, Err: err}
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, payloadNull, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, 0, &ValidationError{
			Resource:   resource,
			Body:       body,
			Violations: []Violation{{Field: "$", Message: "must be a JSON object"}},
		}
	}
	return &object{raw: raw}, payloadObject, nil
}

func (o *object) violate(field, msg string) {
	o.violations = append(o.violations, Violation{Field: field, Message: msg})
}

// field returns the raw value and whether it is present and non-null.
func (o *object) field(name string, required bool) (json.RawMessage, bool) {
	v, ok := o.raw[name]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		if required {
			o.violate(name, "is required")
		}
		return nil, false
	}
	return v, true
}

func (o *object) intField(name string, required bool) (int64, bool) {
	v, ok := o.field(name, required)
	if !ok {
		return 0, false
	}
	var n int64
	if err := json.Unmarshal(v, &n); err != nil {
		o.violate(name, "must be an integer")
		return 0, false
	}
	return n, true
}

func (o *object) positiveField(name string, required bool) (int64, bool) {
	n, ok := o.intField(name, required)
	if ok && n <= 0 {
		o.violate(name, "must be positive")
		return n, false
	}
	return n, ok
}

func (o *object) stringField(name string, required bool) (string, bool) {
	v, ok := o.field(name, required)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		o.violate(name, "must be a string")
		return "", false
	}
	return s, true
}

func (o *object) boolField(name string) bool {
	v, ok := o.field(name, false)
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		o.violate(name, "must be a boolean")
		return false
	}
	return b
}

func (o *object) idsField(name string, required bool) ([]int64, bool) {
	v, ok := o.field(name, required)
	if !ok {
		return nil, false
	}
	ids, err := decodeIDs(v)
	if err != nil {
		o.violate(name, err.Error())
		return nil, false
	}
	return ids, true
}

func (o *object) err(resource string, body []byte) error {
	if len(o.violations) == 0 {
		return nil
	}
	return &ValidationError{Resource: resource, Body: body, Violations: o.violations}
}

type idListError string

func (e idListError) Error() string { return string(e) }

// decodeIDs parses a JSON array of positive integers.
func decodeIDs(v json.RawMessage) ([]int64, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(v, &elems); err != nil {
		return nil, idListError("must be an array of integers")
	}
	ids := make([]int64, 0, len(elems))
	for _, e := range elems {
		var n int64
		if err := json.Unmarshal(e, &n); err != nil {
			return nil, idListError("must be an array of integers")
		}
		if n <= 0 {
			return nil, idListError("must contain only positive integers")
		}
		ids = append(ids, n)
	}
	return ids, nil
}

// parseItem validates an item payload against the generic item schema.
func parseItem(resource string, body []byte) (*Item, payload, error) {
	obj, kind, err := decodeObject(resource, body)
	if err != nil || kind == payloadNull {
		return nil, kind, err
	}

	it := &Item{}
	it.ID, _ = obj.positiveField("id", true)
	if typ, ok := obj.stringField("type", false); ok {
		if t := ItemType(typ); t.Valid() {
			it.Type = t
		} else {
			obj.violate("type", "must be one of "+strings.Join(itemTypeNames(), ", "))
		}
	}
	it.By, _ = obj.stringField("by", false)
	it.Time, _ = obj.intField("time", false)
	it.Text, _ = obj.stringField("text", false)
	it.URL, _ = obj.stringField("url", false)
	it.Title, _ = obj.stringField("title", false)
	if n, ok := obj.intField("score", false); ok {
		score := int(n)
		it.Score = &score
	}
	if n, ok := obj.intField("descendants", false); ok {
		d := int(n)
		it.Descendants = &d
	}
	it.Kids, _ = obj.idsField("kids", false)
	if n, ok := obj.positiveField("parent", false); ok {
		it.Parent = &n
	}
	if n, ok := obj.positiveField("poll", false); ok {
		it.Poll = &n
	}
	it.Parts, _ = obj.idsField("parts", false)
	it.Deleted = obj.boolField("deleted")
	it.Dead = obj.boolField("dead")

	if err := obj.err(resource, body); err != nil {
		return nil, payloadObject, err
	}
	return it, payloadObject, nil
}

// parseUser validates a user payload.
func parseUser(resource string, body []byte) (*User, payload, error) {
	obj, kind, err := decodeObject(resource, body)
	if err != nil || kind == payloadNull {
		return nil, kind, err
	}

	u := &User{}
	if id, ok := obj.stringField("id", true); ok {
		if strings.TrimSpace(id) == "" {
			obj.violate("id", "must not be empty")
		}
		u.ID = id
	}
	u.Created, _ = obj.intField("created", true)
	if n, ok := obj.intField("karma", true); ok {
		u.Karma = int(n)
	}
	u.About, _ = obj.stringField("about", false)
	u.Submitted, _ = obj.idsField("submitted", false)

	if err := obj.err(resource, body); err != nil {
		return nil, payloadObject, err
	}
	return u, payloadObject, nil
}

// parseIDList validates a story list payload.
func parseIDList(resource string, body []byte) ([]int64, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		var probe any
		err := json.Unmarshal(trimmed, &probe)
		return nil, &ValidationError{Resource: resource, Body: body, Err: err}
	}
	ids, err := decodeIDs(trimmed)
	if err != nil {
		return nil, &ValidationError{
			Resource:   resource,
			Body:       body,
			Violations: []Violation{{Field: "$", Message: err.Error()}},
		}
	}
	return ids, nil
}

// parseID validates a single positive integer payload such as maxitem.
func parseID(resource string, body []byte) (int64, error) {
	trimmed := bytes.TrimSpace(body)
	var n int64
	if err := json.Unmarshal(trimmed, &n); err != nil {
		if !json.Valid(trimmed) {
			return 0, &ValidationError{Resource: resource, Body: body, Err: err}
		}
		return 0, &ValidationError{
			Resource:   resource,
			Body:       body,
			Violations: []Violation{{Field: "$", Message: "must be an integer"}},
		}
	}
	if n <= 0 {
		return 0, &ValidationError{
			Resource:   resource,
			Body:       body,
			Violations: []Violation{{Field: "$", Message: "must be positive"}},
		}
	}
	return n, nil
}
