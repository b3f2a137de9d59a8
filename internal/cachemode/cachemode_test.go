package cachemode

import "testing"

func TestMerge(t *testing.T) {
	cases := []struct {
		name     string
		current  Mode
		incoming Mode
		want     Mode
	}{
		{"private sticky", Private, Public, Private},
		{"private sticky over anon", Private, AnonPublicUserPrivate, Private},
		{"public keeps current", AnonPublicUserPrivate, Public, AnonPublicUserPrivate},
		{"public stays public", Public, Public, Public},
		{"anon tightens public", Public, AnonPublicUserPrivate, AnonPublicUserPrivate},
		{"private forces", Public, Private, Private},
		{"unknown forces private", Public, Mode("bogus"), Private},
		{"empty forces private", AnonPublicUserPrivate, Mode(""), Private},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Merge(tc.current, tc.incoming); got != tc.want {
				t.Fatalf("Merge(%q, %q) = %q, want %q", tc.current, tc.incoming, got, tc.want)
			}
		})
	}
}

func TestFoldOrderIndependent(t *testing.T) {
	sequences := [][]Mode{
		{Public, AnonPublicUserPrivate, Private},
		{Private, Public, AnonPublicUserPrivate},
		{AnonPublicUserPrivate, Private, Public},
	}
	for _, seq := range sequences {
		if got := Fold(seq...); got != Private {
			t.Fatalf("Fold(%v) = %q, want private", seq, got)
		}
	}
	if got := Fold(Public, Public, Public); got != Public {
		t.Fatalf("all public folded to %q", got)
	}
	if got := Fold(Public, AnonPublicUserPrivate, Public); got != AnonPublicUserPrivate {
		t.Fatalf("mixed public/anon folded to %q", got)
	}
	if got := Fold(); got != Public {
		t.Fatalf("empty fold = %q", got)
	}
}

func TestTrackerReportsOnce(t *testing.T) {
	tracker := NewTracker()
	if err := tracker.Report("pageset", Public); err != nil {
		t.Fatalf("report: %v", err)
	}
	if err := tracker.Report("parse", AnonPublicUserPrivate); err != nil {
		t.Fatalf("report: %v", err)
	}
	if err := tracker.Report("parse", Private); err == nil {
		t.Fatalf("expected duplicate report to fail")
	}
	if got := tracker.Mode(); got != AnonPublicUserPrivate {
		t.Fatalf("mode = %q", got)
	}
	ops := tracker.Operations()
	if len(ops) != 2 || ops[0] != "pageset" || ops[1] != "parse" {
		t.Fatalf("operations = %v", ops)
	}
}
