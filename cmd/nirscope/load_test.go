package main

import "testing"

func TestParseChannelList(t *testing.T) {
	got, err := parseChannelList("1, 3,4", 4)
	if err != nil {
		t.Fatalf("parseChannelList: %v", err)
	}
	want := []int{0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParseChannelListAll(t *testing.T) {
	got, err := parseChannelList("", 3)
	if err != nil {
		t.Fatalf("parseChannelList: %v", err)
	}
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Fatalf("got = %v", got)
	}
}

func TestParseChannelListErrors(t *testing.T) {
	for _, s := range []string{"0", "5", "abc", "1,,2"} {
		if _, err := parseChannelList(s, 4); err == nil {
			t.Errorf("parseChannelList(%q) accepted invalid input", s)
		}
	}
}
