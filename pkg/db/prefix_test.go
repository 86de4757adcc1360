package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixEnd(t *testing.T) {
	tests := []struct {
		name     string
		prefix   []byte
		expected []byte
	}{
		{"simple", []byte{1, 2}, []byte{1, 3}},
		{"trailing_ff", []byte{1, 0xff}, []byte{2}},
		{"all_ff", []byte{0xff, 0xff}, nil},
		{"empty", []byte{}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, PrefixEnd(tc.prefix))
		})
	}
}
