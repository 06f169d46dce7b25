package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		id        ID
		wantLabel string
		wantOk    bool
	}{
		{name: "zero", id: 0, wantOk: false},
		{name: "student", id: 1, wantLabel: "Student", wantOk: true},
		{name: "tutor", id: 2, wantLabel: "Tutor", wantOk: true},
		{name: "client", id: 3, wantLabel: "Client", wantOk: true},
		{name: "coordinator", id: 4, wantLabel: "Coordinator", wantOk: true},
		{name: "administrator", id: 5, wantLabel: "Administrator", wantOk: true},
		{name: "out of range", id: 6, wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := Lookup(tt.id)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantLabel, r.Label)
			if ok {
				assert.NotEmpty(t, r.Style.Background)
				assert.NotEmpty(t, r.Style.Color)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   ID
		wantOk bool
	}{
		{in: "4", want: Coordinator, wantOk: true},
		{in: " tutor ", want: Tutor, wantOk: true},
		{in: "ADMINISTRATOR", want: Administrator, wantOk: true},
		{in: "9", wantOk: false},
		{in: "lol", wantOk: false},
		{in: "", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllIsACopy(t *testing.T) {
	all := All()
	assert.Len(t, all, 5)
	all[0].Label = "changed"
	assert.Equal(t, "Student", Student.String())
	assert.Equal(t, "Unknown", ID(42).String())
}
