package kkr

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestToFloat(t *testing.T) {
	got, err := toFloat([]string{"1.5", "-2.0D-01", "3"})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.5, -0.2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
	if _, err := toFloat([]string{"1.0", "x"}); err == nil {
		t.Error("got nil, wanted an error")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{
			a:    1.0000000000000001,
			b:    1.0,
			want: true,
		},
		{
			a:    0.99999999,
			b:    1.0,
			want: true,
		},
		{
			a:    1.1,
			b:    1.0,
			want: false,
		},
	}
	for _, test := range tests {
		got := Equal(test.a, test.b)
		if got != test.want {
			t.Errorf("got %v, wanted %v\n", got, test.want)
		}
	}
}

func TestIdentity(t *testing.T) {
	got := Identity(3)
	want := *mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	if !reflect.DeepEqual(got.RawMatrix().Data, want.RawMatrix().Data) {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
}

func TestRows(t *testing.T) {
	got := rows(mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	}))
	want := [][]float64{{1, 2, 3}, {4, 5, 6}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, wanted %v\n", got, want)
	}
}
