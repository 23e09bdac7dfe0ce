package segment

import (
	"errors"
	"testing"
)

func comp(dim, value string) Component {
	return Component{Dimension: dim, Value: value}
}

func TestSerializeIsOrderIndependent(t *testing.T) {
	permutations := []Key{
		{comp("device", "ios"), comp("Country", "USA"), comp("browser", "safari")},
		{comp("Country", "USA"), comp("browser", "safari"), comp("device", "ios")},
		{comp("browser", "safari"), comp("device", "ios"), comp("Country", "USA")},
	}
	want := "browser:safari|Country:USA|device:ios"
	for i, k := range permutations {
		if got := k.Serialize(); got != want {
			t.Errorf("permutation %d: Serialize() = %q, want %q", i, got, want)
		}
	}
}

func TestSerializeCaseTieBreakIsDeterministic(t *testing.T) {
	a := Key{comp("region", "x"), comp("Region", "y")}
	b := Key{comp("Region", "y"), comp("region", "x")}
	if a.Serialize() != b.Serialize() {
		t.Fatalf("expected equal serializations, got %q and %q", a.Serialize(), b.Serialize())
	}
	if got := a.Serialize(); got != "Region:y|region:x" {
		t.Errorf("Serialize() = %q", got)
	}
}

func TestDeserializeRoundTrip(t *testing.T) {
	keys := []Key{
		{comp("country", "USA")},
		{comp("device", "ios"), comp("country", "USA")},
		{comp("url", "https://example.com/a"), comp("os", "")},
	}
	for _, k := range keys {
		t.Run(k.Serialize(), func(t *testing.T) {
			got, err := Deserialize(k.Serialize())
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}
			if !IsSubsetOf(got, k) || !IsSubsetOf(k, got) {
				t.Errorf("round trip mismatch: got %v, want %v", got, k)
			}
		})
	}
}

func TestDeserializeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"missing separator", "country"},
		{"second segment missing separator", "country:USA|device"},
		{"trailing pipe", "country:USA|"},
		{"duplicate dimension", "country:USA|country:UK"},
		{"empty dimension", ":x"},
		{"empty dimension in compound", "country:USA|:ios"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize(tt.input)
			var malformed *MalformedKeyError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedKeyError, got %v", err)
			}
			if malformed.Input != tt.input {
				t.Errorf("Input = %q, want %q", malformed.Input, tt.input)
			}
		})
	}
}

func TestNewKeyRejectsDuplicateDimensions(t *testing.T) {
	_, err := NewKey(comp("country", "USA"), comp("country", "UK"))
	var invalid *InvalidKeyError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidKeyError, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if err := (Key{}).Validate(); err == nil {
		t.Error("expected error for empty key")
	}
	if err := (Key{comp("a", "1")}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFormatRelativeToParent(t *testing.T) {
	key := Key{comp("device", "ios"), comp("country", "USA")}
	parent := Key{comp("country", "USA")}

	tokens := Format(key, parent)
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[0].Kind != TokenComponent || tokens[0].Dimension != "country" || tokens[0].Value != "USA" || tokens[0].Emphasized {
		t.Errorf("token 0 = %+v, want country=USA not emphasized", tokens[0])
	}
	if tokens[1].Kind != TokenAnd || tokens[1].String() != "AND" {
		t.Errorf("token 1 = %+v, want AND", tokens[1])
	}
	if tokens[2].Dimension != "device" || tokens[2].Value != "ios" || !tokens[2].Emphasized {
		t.Errorf("token 2 = %+v, want device=ios emphasized", tokens[2])
	}
}

func TestFormatWithoutParentEmphasizesAll(t *testing.T) {
	tokens := Format(Key{comp("country", "USA")}, nil)
	if len(tokens) != 1 || !tokens[0].Emphasized {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
	if got := Label(Key{comp("device", "ios"), comp("country", "USA")}, nil); got != "country = USA AND device = ios" {
		t.Errorf("Label() = %q", got)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		input   string
		matches bool
	}{
		{"exact", Key{comp("country", "USA")}, "country:USA", true},
		{"superset", Key{comp("country", "USA")}, "country:USA|device:ios", true},
		{"unrelated", Key{comp("country", "USA")}, "device:ios", false},
		{"value prefix", Key{comp("country", "USA")}, "country:USAF", false},
		{"interleaved", Key{comp("a", "1"), comp("c", "3")}, "a:1|b:2|c:3", true},
		{"leading extra", Key{comp("c", "3")}, "a:1|c:3", true},
		{"missing one", Key{comp("a", "1"), comp("c", "3")}, "a:1|b:2", false},
		{"value inside other value", Key{comp("b", "2")}, "a:xb:2", false},
		{"regex metachars", Key{comp("path", "/a.b")}, "path:/aXb", false},
		{"empty key matches all", Key{}, "anything:here", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchPattern(tt.key).MatchString(tt.input); got != tt.matches {
				t.Errorf("MatchPattern(%v).MatchString(%q) = %v, want %v", tt.key, tt.input, got, tt.matches)
			}
		})
	}
}
