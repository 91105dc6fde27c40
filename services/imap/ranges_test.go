package imap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rangeStrings(ranges []UIDRange) []string {
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, r.String())
	}
	return out
}

func TestCoalesceUIDs(t *testing.T) {
	tests := []struct {
		name string
		uids []uint32
		want []string
	}{
		{
			name: "two runs",
			uids: []uint32{5, 6, 7, 9, 10},
			want: []string{"5:7", "9:10"},
		},
		{
			name: "single uid",
			uids: []uint32{3},
			want: []string{"3"},
		},
		{
			name: "all contiguous",
			uids: []uint32{1, 2, 3, 4},
			want: []string{"1:4"},
		},
		{
			name: "all isolated",
			uids: []uint32{2, 4, 8},
			want: []string{"2", "4", "8"},
		},
		{
			name: "unsorted input",
			uids: []uint32{9, 5, 7, 10, 6},
			want: []string{"5:7", "9:10"},
		},
		{
			name: "empty",
			uids: nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rangeStrings(CoalesceUIDs(tt.uids)))
		})
	}
}

func TestCoalesceUIDs_DoesNotMutateInput(t *testing.T) {
	uids := []uint32{9, 5, 7}
	CoalesceUIDs(uids)
	assert.Equal(t, []uint32{9, 5, 7}, uids)
}
