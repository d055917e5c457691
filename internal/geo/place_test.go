package geo

import "testing"

func TestBuildPlaceLabel(t *testing.T) {
	tests := []struct {
		name string
		addr *address
		want string
	}{
		{
			name: "nil address",
			addr: nil,
			want: "",
		},
		{
			name: "empty address",
			addr: &address{},
			want: "",
		},
		{
			name: "full address with postcode",
			addr: &address{City: "Springfield", State: "Illinois", Country: "USA", Postcode: "62701"},
			want: "Springfield, Illinois, USA [62701]",
		},
		{
			name: "town fallback when city missing",
			addr: &address{Town: "Smalltown", Country: "USA"},
			want: "Smalltown, USA",
		},
		{
			name: "city wins over town",
			addr: &address{City: "Big City", Town: "Smalltown", Country: "USA"},
			want: "Big City, USA",
		},
		{
			name: "name substitutes missing country",
			addr: &address{Village: "Hamletville", Name: "Somewhere"},
			want: "Hamletville, Somewhere",
		},
		{
			name: "country wins over name",
			addr: &address{City: "X", Country: "France", Name: "ignored"},
			want: "X, France",
		},
		{
			name: "state only",
			addr: &address{State: "Bavaria"},
			want: "Bavaria",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildPlaceLabel(tt.addr); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
