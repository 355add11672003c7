// Package colornames provides the CSS named-color table (aliceblue,
// rebeccapurple, ...) as a process-wide, lazily loaded singleton.
package colornames

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/npillmayer/schuko/tracing"

	"github.com/go-webcore/minibrowser/core/cssval"
)

func tracer() tracing.Trace {
	return tracing.Select("minibrowser.colornames")
}

//go:embed colornames.json
var rawTable []byte

var (
	once  sync.Once
	table map[string]cssval.Color
)

func load() {
	var hexes map[string]string
	if err := json.Unmarshal(rawTable, &hexes); err != nil {
		tracer().Errorf("colornames: embedded table is corrupt: %v", err)
		table = map[string]cssval.Color{}
		return
	}
	table = make(map[string]cssval.Color, len(hexes))
	for name, hex := range hexes {
		c, err := cssval.FromHex(hex)
		if err != nil {
			tracer().Errorf("colornames: entry %q has invalid hex %q", name, hex)
			continue
		}
		table[name] = c
	}
	tracer().Infof("colornames: loaded %d named colors", len(table))
}

// Lookup resolves a CSS color keyword (case-insensitively normalized by the
// caller) to its RGBA value. The second return value is false if name is
// not a recognized CSS color keyword.
func Lookup(name string) (cssval.Color, bool) {
	once.Do(load)
	c, ok := table[name]
	return c, ok
}

// MustLookup is like Lookup but panics if name is unknown. It is meant for
// call sites that already validated name against Lookup and need a plain
// value.
func MustLookup(name string) cssval.Color {
	c, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("colornames: no such color %q", name))
	}
	return c
}
