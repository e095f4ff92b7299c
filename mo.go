package main

import (
	"github.com/tidwall/sjson"
)

////////////////////////////////////////////////////////////
// Managed object payloads
////////////////////////////////////////////////////////////

type attribute struct {
	key   string
	value string
}

// MO is a managed object to be written to the controller.
type MO struct {
	class    string
	attrs    []attribute
	children []*MO
}

func NewMO(class string) *MO {
	return &MO{class: class}
}

func (m *MO) Set(key, value string) *MO {
	for i := range m.attrs {
		if m.attrs[i].key == key {
			m.attrs[i].value = value
			return m
		}
	}
	m.attrs = append(m.attrs, attribute{key, value})
	return m
}

func (m *MO) Attr(key string) string {
	for _, a := range m.attrs {
		if a.key == key {
			return a.value
		}
	}
	return ""
}

func (m *MO) SetAll(attrs []attribute) *MO {
	for _, a := range attrs {
		m.Set(a.key, a.value)
	}
	return m
}

func (m *MO) Add(child *MO) *MO {
	m.children = append(m.children, child)
	return m
}

// JSON renders {"<class>":{"attributes":{...},"children":[...]}}.
func (m *MO) JSON() (string, error) {
	doc, err := sjson.SetRaw(`{}`, m.class, `{"attributes":{}}`)
	if err != nil {
		return "", err
	}
	for _, a := range m.attrs {
		if doc, err = sjson.Set(doc, m.class+".attributes."+a.key, a.value); err != nil {
			return "", err
		}
	}
	if len(m.children) > 0 {
		if doc, err = sjson.SetRaw(doc, m.class+".children", `[]`); err != nil {
			return "", err
		}
	}
	for _, child := range m.children {
		raw, err := child.JSON()
		if err != nil {
			return "", err
		}
		if doc, err = sjson.SetRaw(doc, m.class+".children.-1", raw); err != nil {
			return "", err
		}
	}
	return doc, nil
}

// filterAttributes keeps only the writable attributes named in keep, in
// that order.
func filterAttributes(attrs JSON, keep []string) []attribute {
	var res []attribute
	for _, key := range keep {
		if v := attrs.Get(key); v.Exists() {
			res = append(res, attribute{key, v.String()})
		}
	}
	return res
}
