// Package confighash computes the deterministic fingerprint used for drift
// detection: a SHA-256 over a canonical serialization of the effective
// Docker config plus workspace-access mode and workspace directory. There
// is no library for this in the pack — canonical-JSON hashing is a small,
// self-contained algorithm better hand-rolled than pulled in as a
// dependency, the same way the teacher hand-rolls small deterministic
// helpers (internal/id.Generate) rather than importing one.
package confighash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is anything that can appear in the canonicalized tree: nil,
// bool, string, a number (float64 or int), a map[string]Value, or a
// []Value. Keys whose value is nil are treated as undefined and dropped.
type Value = any

// ComputeSandboxConfigHash serializes docker (the effective Docker config,
// represented as a plain map so this package never depends on the config
// struct's package), workspaceAccess, and workspaceDir into canonical form
// and returns the lowercase hex SHA-256 of the result.
func ComputeSandboxConfigHash(docker map[string]Value, workspaceAccess, workspaceDir string) string {
	root := map[string]Value{
		"docker":          docker,
		"workspaceAccess": workspaceAccess,
		"workspaceDir":    workspaceDir,
	}
	return Hash(root)
}

// Hash returns the lowercase hex SHA-256 of v's canonical serialization.
func Hash(v Value) string {
	var b strings.Builder
	writeCanonical(&b, v)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// writeCanonical appends v's canonical textual form to b. The form is not
// meant to be parsed back; it only needs to be stable and collision-free
// across equal-valued, differently-ordered inputs.
func writeCanonical(b *strings.Builder, v Value) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case string:
		writeQuoted(b, t)
	case int:
		b.WriteString(strconv.Itoa(t))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case map[string]Value:
		writeCanonicalMap(b, t)
	case map[string]string:
		m := make(map[string]Value, len(t))
		for k, v := range t {
			m[k] = v
		}
		writeCanonicalMap(b, m)
	case []Value:
		writeCanonicalArray(b, t)
	case []string:
		arr := make([]Value, len(t))
		for i, s := range t {
			arr[i] = s
		}
		writeCanonicalArray(b, arr)
	default:
		// Numeric and other scalar types not covered above (e.g. float32,
		// named string types) fall back to a stable textual form.
		b.WriteString(fmt.Sprintf("%v", t))
	}
}

func writeCanonicalMap(b *strings.Builder, m map[string]Value) {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v == nil {
			continue // drop undefined fields
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeQuoted(b, k)
		b.WriteByte(':')
		writeCanonical(b, m[k])
	}
	b.WriteByte('}')
}

func writeCanonicalArray(b *strings.Builder, arr []Value) {
	if isPrimitiveArray(arr) {
		arr = sortedPrimitives(arr)
	}
	b.WriteByte('[')
	for i, v := range arr {
		if i > 0 {
			b.WriteByte(',')
		}
		writeCanonical(b, v)
	}
	b.WriteByte(']')
}

func isPrimitiveArray(arr []Value) bool {
	for _, v := range arr {
		switch v.(type) {
		case map[string]Value, map[string]string, []Value, []string:
			return false
		}
	}
	return true
}

// sortedPrimitives sorts a primitive array ascending: lexicographically for
// strings, numerically for numbers. Mixed-type arrays sort by their textual
// form, which is stable even though the spec doesn't exercise that case.
func sortedPrimitives(arr []Value) []Value {
	out := make([]Value, len(arr))
	copy(out, arr)
	sort.SliceStable(out, func(i, j int) bool {
		fi, fj, okI, okJ := numeric(out[i]), numeric(out[j]), isNumeric(out[i]), isNumeric(out[j])
		if okI && okJ {
			return fi < fj
		}
		return fmt.Sprintf("%v", out[i]) < fmt.Sprintf("%v", out[j])
	})
	return out
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case int, int64, float64:
		return true
	default:
		return false
	}
}

func numeric(v Value) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case float64:
		return t
	default:
		return 0
	}
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
