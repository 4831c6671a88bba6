package types

import (
	"testing"
)

func TestCustomizationCanonicalIsKeyOrderIndependent(t *testing.T) {
	a := Customization{"size": "A3", "finish": "matte"}
	b := Customization{"finish": "matte", "size": "A3"}

	if !a.Equal(b) {
		t.Fatal("expected equal customizations regardless of key order")
	}
}

func TestCustomizationEqualDetectsDifference(t *testing.T) {
	a := Customization{"size": "A3"}
	b := Customization{"size": "A4"}

	if a.Equal(b) {
		t.Fatal("expected different customizations to compare unequal")
	}
}

func TestCustomizationNilAndEmptyAreEqual(t *testing.T) {
	var a Customization
	b := Customization{}

	if !a.Equal(b) {
		t.Fatal("expected nil and empty customizations to be equal")
	}
}

func TestCustomizationWithFileDoesNotMutateReceiver(t *testing.T) {
	orig := Customization{"size": "A3"}
	merged := orig.WithFile("uploads/artwork-1.png")

	if _, ok := orig[FileKey]; ok {
		t.Fatal("receiver must not be mutated")
	}
	if merged[FileKey] != "uploads/artwork-1.png" {
		t.Fatalf("unexpected file value %v", merged[FileKey])
	}
	if merged["size"] != "A3" {
		t.Fatal("existing keys must be carried over")
	}
}

func TestCustomizationScanRoundTrip(t *testing.T) {
	orig := Customization{"size": "A3", "copies": float64(2)}
	value, err := orig.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned Customization
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !orig.Equal(scanned) {
		t.Fatalf("round trip mismatch: %v vs %v", orig, scanned)
	}
}
