// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scannerinput

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// Legacy renders t as properties text.
//
// Values of a multi-valued property are joined with a comma and a line
// continuation. When escaping is true, each value is quoted. Otherwise
// values containing a comma cannot be represented; they are left out and
// returned in dropped.
//
// Sensitive and omitted keys are not written. The modules marker is last.
func (t *Tree) Legacy(escaping bool) (text []byte, dropped []string) {
	var sb strings.Builder
	for _, p := range t.props {
		if IsOmitted(p.Key) || IsSensitive(p.Key) {
			continue
		}
		if !p.Multi {
			fmt.Fprintf(&sb, "%s=%s\n", escapeKey(p.Key), escapeValue(p.Values[0]))
			continue
		}
		var values []string
		for _, v := range p.Values {
			if escaping {
				values = append(values, escapeValue(quote(v)))
				continue
			}
			if strings.Contains(v, ",") {
				dropped = append(dropped, v)
				continue
			}
			values = append(values, escapeValue(v))
		}
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s=%s\n", escapeKey(p.Key), strings.Join(values, ",\\\n"))
	}
	if len(t.modules) > 0 {
		fmt.Fprintf(&sb, "%s=%s\n", ModulesKey, escapeValue(strings.Join(t.modules, ",")))
	}
	return []byte(sb.String()), dropped
}

// quote wraps v in double quotes, escaping '\' and '"'.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

func escapeKey(k string) string {
	var sb strings.Builder
	for _, r := range k {
		switch r {
		case ' ', ':', '=', '#', '!':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			escapeRune(&sb, r)
		}
	}
	return sb.String()
}

func escapeValue(v string) string {
	var sb strings.Builder
	for i, r := range v {
		if i == 0 && r == ' ' {
			sb.WriteString(`\ `)
			continue
		}
		escapeRune(&sb, r)
	}
	return sb.String()
}

// escapeRune writes r with properties escaping. Characters outside
// printable ASCII are written as \uXXXX (surrogate pairs when needed).
func escapeRune(sb *strings.Builder, r rune) {
	switch {
	case r == '\\':
		sb.WriteString(`\\`)
	case r == '\t':
		sb.WriteString(`\t`)
	case r == '\n':
		sb.WriteString(`\n`)
	case r == '\r':
		sb.WriteString(`\r`)
	case r == '\f':
		sb.WriteString(`\f`)
	case r >= 0x20 && r < 0x7f:
		sb.WriteRune(r)
	case r > 0xffff:
		hi, lo := utf16.EncodeRune(r)
		fmt.Fprintf(sb, `\u%04X\u%04X`, hi, lo)
	default:
		fmt.Fprintf(sb, `\u%04X`, r)
	}
}
