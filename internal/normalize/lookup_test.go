package normalize

import "testing"

func TestLookupPrecedence(t *testing.T) {
	m := map[string]float64{
		"Chicken Leg":                       10,
		"Kozhi Kaal - Chicken Leg - കോഴി":  20,
	}

	if v, ok := Lookup(m, "Kozhi Kaal - Chicken Leg - കോഴി", ""); !ok || v != 10 {
		t.Fatalf("expected canonical key to win with 10, got %v (ok=%v)", v, ok)
	}

	delete(m, "Chicken Leg")
	if v, ok := Lookup(m, "Kozhi Kaal - Chicken Leg - കോഴി", ""); !ok || v != 20 {
		t.Fatalf("expected raw key 20, got %v (ok=%v)", v, ok)
	}
}

func TestLookupScan(t *testing.T) {
	m := map[string]string{
		"Other - Chicken Leg - Script": "1kg",
		"Beef Ribs":                    "2kg",
	}
	v, ok := LookupScan(m, "Chicken Leg")
	if !ok || v != "1kg" {
		t.Fatalf("expected scan to match composite key, got %q (ok=%v)", v, ok)
	}
	if _, ok := LookupScan(map[string]string{}, "x"); ok {
		t.Fatalf("expected empty map miss")
	}
}

func TestLookupSized(t *testing.T) {
	m := map[string]float64{"Prawns_large": 400, "Local - Seer - Script_small": 150}

	if v, ok := LookupSized(m, "Local - Prawns - Script", "large"); !ok || v != 400 {
		t.Fatalf("expected canonical sized key 400, got %v", v)
	}
	if v, ok := LookupSized(m, "Local - Seer - Script", "small"); !ok || v != 150 {
		t.Fatalf("expected raw sized key 150, got %v", v)
	}
	if _, ok := LookupSized(m, "Prawns", ""); ok {
		t.Fatalf("expected no probe without size")
	}
}
