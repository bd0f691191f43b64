package domain

import "testing"

func TestResolvePricingTier(t *testing.T) {
	tier := ResolvePricingTier("499-599", "")
	variants := BuildVariants(tier)
	if len(variants) != len(Sizes) {
		t.Fatalf("got %d variants", len(variants))
	}
	for i, v := range variants {
		want := "499"
		if i == len(variants)-1 {
			want = "599"
		}
		if v.Price.String() != want {
			t.Errorf("%s priced %s, want %s", v.Size, v.Price, want)
		}
		if v.Quantity != PlaceholderStock {
			t.Errorf("%s stock %d", v.Size, v.Quantity)
		}
	}
	if variants[len(variants)-1].Size != "3XL" {
		t.Fatalf("largest size is %s", variants[len(variants)-1].Size)
	}
}

func TestResolvePricingTierFallback(t *testing.T) {
	if got := ResolvePricingTier("1-2", ""); got.Key != DefaultPricingTierKey {
		t.Fatalf("unknown tier resolved to %s", got.Key)
	}
	if got := ResolvePricingTier("", "399-499"); got.Key != "399-499" {
		t.Fatalf("configured fallback ignored: %s", got.Key)
	}
	if got := ResolvePricingTier(" 599-699 ", ""); got.Key != "599-699" {
		t.Fatalf("whitespace not trimmed: %s", got.Key)
	}
}

func TestInventoryIndex(t *testing.T) {
	idx := NewInventoryIndex()
	idx.Add("fpimg-b")
	idx.Add("fpimg-a")
	idx.Add("")
	if idx.Contains("") {
		t.Fatal("empty fingerprint must never match")
	}
	if !idx.Contains("fpimg-a") || idx.Contains("fpimg-c") {
		t.Fatal("membership wrong")
	}
	got := idx.Sorted()
	if len(got) != 2 || got[0] != "fpimg-a" || got[1] != "fpimg-b" {
		t.Fatalf("sorted = %v", got)
	}
}
