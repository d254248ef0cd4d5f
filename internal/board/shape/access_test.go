package shape

import "testing"

func boolPtr(v bool) *bool { return &v }

func TestAccessPropagation(t *testing.T) {
	tests := []struct {
		name  string
		start AccessDescriptor
		apply func(AccessDescriptor) AccessDescriptor
		want  AccessDescriptor
	}{
		{
			name:  "granting edit grants movement and vision",
			start: AccessDescriptor{},
			apply: func(a AccessDescriptor) AccessDescriptor { return a.WithEdit(true) },
			want:  AccessDescriptor{Edit: true, Movement: true, Vision: true},
		},
		{
			name:  "revoking edit keeps movement and vision",
			start: FullAccess(),
			apply: func(a AccessDescriptor) AccessDescriptor { return a.WithEdit(false) },
			want:  AccessDescriptor{Movement: true, Vision: true},
		},
		{
			name:  "granting movement grants vision",
			start: AccessDescriptor{},
			apply: func(a AccessDescriptor) AccessDescriptor { return a.WithMovement(true) },
			want:  AccessDescriptor{Movement: true, Vision: true},
		},
		{
			name:  "revoking movement revokes edit",
			start: FullAccess(),
			apply: func(a AccessDescriptor) AccessDescriptor { return a.WithMovement(false) },
			want:  AccessDescriptor{Vision: true},
		},
		{
			name:  "granting vision grants nothing else",
			start: AccessDescriptor{},
			apply: func(a AccessDescriptor) AccessDescriptor { return a.WithVision(true) },
			want:  AccessDescriptor{Vision: true},
		},
		{
			name:  "revoking vision revokes everything",
			start: FullAccess(),
			apply: func(a AccessDescriptor) AccessDescriptor { return a.WithVision(false) },
			want:  AccessDescriptor{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.apply(tt.start)
			if got != tt.want {
				t.Fatalf("access = %+v, want %+v", got, tt.want)
			}
			if !got.Valid() {
				t.Fatalf("access %+v violates capability ordering", got)
			}
		})
	}
}

func TestAccessMerge(t *testing.T) {
	start := FullAccess()
	got := start.Merge(AccessUpdate{Vision: boolPtr(false)})
	if got != (AccessDescriptor{}) {
		t.Fatalf("access = %+v, want all revoked", got)
	}

	got = AccessDescriptor{}.Merge(AccessUpdate{Movement: boolPtr(true)})
	want := AccessDescriptor{Movement: true, Vision: true}
	if got != want {
		t.Fatalf("access = %+v, want %+v", got, want)
	}

	// Nil fields leave the descriptor untouched.
	got = start.Merge(AccessUpdate{})
	if got != start {
		t.Fatalf("access = %+v, want %+v", got, start)
	}
}

func TestAccessValid(t *testing.T) {
	if (AccessDescriptor{Edit: true}).Valid() {
		t.Fatal("edit without movement and vision should be invalid")
	}
	if (AccessDescriptor{Movement: true}).Valid() {
		t.Fatal("movement without vision should be invalid")
	}
	if !FullAccess().Valid() {
		t.Fatal("full access should be valid")
	}
	if !(AccessDescriptor{}).Valid() {
		t.Fatal("zero access should be valid")
	}
}
