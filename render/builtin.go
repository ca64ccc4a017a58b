package render

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

var builtins = map[string]string{
	"c-array": `/*===========================================
Wavetable for Open.Theremin
Generated at {date} by wavyd
Parameters(partial weights/phases)

{spec}
{partials}
============================================*/

#include <avr/pgmspace.h>

const int16_t wave_table[{table}] PROGMEM = {\
*{value}{sep:,}
};
`,
	"list": `*{value}
`,
	"csv": `index,value
*{index},{value}
`,
}

// Builtin returns the named built-in template.
func Builtin(name string) (*Template, bool) {
	text, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return Parse(name, text), true
}

// Names returns the built-in template names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load resolves ref as a built-in template name or, failing that, as a
// template file path.
func Load(ref string) (*Template, error) {
	if t, ok := Builtin(ref); ok {
		return t, nil
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("render: template %q is neither built in (%s) nor readable: %w",
			ref, strings.Join(Names(), ", "), err)
	}
	return Parse(ref, string(data)), nil
}
