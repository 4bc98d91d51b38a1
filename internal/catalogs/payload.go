package catalogs

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is one key/value pair of a form payload.
type Param struct {
	Key   string
	Value string
}

// Payload is an ordered form payload. A key may repeat.
type Payload []Param

func (p *Payload) Add(key, value string) {
	*p = append(*p, Param{Key: key, Value: value})
}

func (p *Payload) AddFloat(key string, value float64) {
	p.Add(key, strconv.FormatFloat(value, 'f', -1, 64))
}

func (p *Payload) AddInt(key string, value int) {
	p.Add(key, strconv.Itoa(value))
}

// Get returns the first value of key.
func (p Payload) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// All returns every value of key in order.
func (p Payload) All(key string) []string {
	var out []string
	for _, param := range p {
		if param.Key == key {
			out = append(out, param.Value)
		}
	}
	return out
}

func (p Payload) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Values converts the payload for form encoding, the relative order of
// repeated keys is kept.
func (p Payload) Values() url.Values {
	values := url.Values{}
	for _, param := range p {
		values.Add(param.Key, param.Value)
	}
	return values
}

// Encode url-encodes the payload keeping the order params were added in.
func (p Payload) Encode() string {
	var out strings.Builder
	for i, param := range p {
		if i > 0 {
			out.WriteByte('&')
		}
		out.WriteString(url.QueryEscape(param.Key))
		out.WriteByte('=')
		out.WriteString(url.QueryEscape(param.Value))
	}
	return out.String()
}
