package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSequentialID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		last   string
		want   string
	}{
		{"empty sequence starts at one", "O", "", "O0001"},
		{"increments last id", "O", "O0012", "O0013"},
		{"user prefix", "U", "U0001", "U0002"},
		{"payment prefix", "Y", "Y0099", "Y0100"},
		{"keeps padding at four digits", "P", "P0009", "P0010"},
		{"grows past four digits", "O", "O9999", "O10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextSequentialID(tt.prefix, tt.last))
		})
	}
}

func TestNextSequentialIDOrdering(t *testing.T) {
	// Lexicographic order must match numeric order within the padded range,
	// since read-max uses a plain MAX over the text column.
	prev := ""
	id := ""
	for i := 0; i < 50; i++ {
		id = nextSequentialID("O", id)
		if prev != "" {
			assert.Greater(t, id, prev)
		}
		prev = id
	}
	assert.Equal(t, "O0050", id)
}
