package rng

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := New(12345)
	b := New(12345)

	for i := 0; i < 100; i++ {
		if af, bf := a.Float(), b.Float(); af != bf {
			t.Fatalf("draw %d: %v != %v", i, af, bf)
		}
	}
	for i := 0; i < 100; i++ {
		if ai, bi := a.IntBetween(0, 99), b.IntBetween(0, 99); ai != bi {
			t.Fatalf("int draw %d: %d != %d", i, ai, bi)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	same := true
	for i := 0; i < 20; i++ {
		if a.Float() != b.Float() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical sequences")
	}
}

func TestIntBetweenInclusive(t *testing.T) {
	s := New(7)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := s.IntBetween(3, 5)
		if v < 3 || v > 5 {
			t.Fatalf("IntBetween(3,5) = %d", v)
		}
		seen[v] = true
	}
	for want := 3; want <= 5; want++ {
		if !seen[want] {
			t.Fatalf("never drew %d in 500 draws", want)
		}
	}
}

func TestFloatBetween(t *testing.T) {
	s := New(7)
	for i := 0; i < 100; i++ {
		v := s.FloatBetween(1.5, 2.5)
		if v < 1.5 || v >= 2.5 {
			t.Fatalf("FloatBetween(1.5,2.5) = %v", v)
		}
	}
}

func TestPick(t *testing.T) {
	s := New(3)
	if got := s.Pick(0); got != -1 {
		t.Fatalf("Pick(0) = %d, want -1", got)
	}
	for i := 0; i < 50; i++ {
		if v := s.Pick(4); v < 0 || v > 3 {
			t.Fatalf("Pick(4) = %d", v)
		}
	}
}

func TestDie(t *testing.T) {
	s := New(9)
	for i := 0; i < 200; i++ {
		if v := s.Die(6); v < 1 || v > 6 {
			t.Fatalf("Die(6) = %d", v)
		}
	}
}

func TestChanceExtremes(t *testing.T) {
	s := New(11)
	for i := 0; i < 50; i++ {
		if s.Chance(0) {
			t.Fatal("Chance(0) returned true")
		}
		if !s.Chance(1) {
			t.Fatal("Chance(1) returned false")
		}
	}
}

func TestShufflePreservesElements(t *testing.T) {
	vals := []int{1, 2, 3, 4, 5, 6, 7, 8}
	s := New(42)
	s.Shuffle(len(vals), func(i, j int) {
		vals[i], vals[j] = vals[j], vals[i]
	})

	seen := map[int]bool{}
	for _, v := range vals {
		seen[v] = true
	}
	for want := 1; want <= 8; want++ {
		if !seen[want] {
			t.Fatalf("shuffle lost element %d", want)
		}
	}
}
