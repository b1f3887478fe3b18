package equivalence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTTL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"interval day to function form", "INTERVAL 30 DAY", "toIntervalDay(30)"},
		{"interval with trailing delete", "INTERVAL 7 DAY DELETE", "toIntervalDay(7)"},
		{"already function form", "toIntervalDay(30)", "toIntervalDay(30)"},
		{"lowercase unit", "interval 5 hour", "toIntervalHour(5)"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeTTL(tc.in))
		})
	}
}

func TestNormalizeCodec(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare delta expands", "Delta", "Delta(4)"},
		{"bare gorilla expands", "Gorilla", "Gorilla(8)"},
		{"bare zstd expands", "ZSTD", "ZSTD(1)"},
		{"already parameterized passes through", "Delta(4)", "Delta(4)"},
		{"chain normalizes element-wise", "Delta, ZSTD", "Delta(4), ZSTD(1)"},
		{"unknown codec passes through", "LZ4", "LZ4"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeCodec(tc.in))
		})
	}
}

func TestNormalizePrimaryKeyExpr(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"single field parens stripped", "(id)", "id"},
		{"function call parens stripped", "(cityHash64(id))", "cityHash64(id)"},
		{"tuple parens kept", "(a, b)", "(a,b)"},
		{"backticks stripped", "`id`", "id"},
		{"no parens unchanged", "id", "id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePrimaryKeyExpr(tc.in))
		})
	}
}
