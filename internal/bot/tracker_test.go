package bot

import (
	"fmt"
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()

	if _, ok := tr.Latest("!room:a"); ok {
		t.Fatal("empty tracker should have no image")
	}

	tr.Observe("!room:a", "$img1")
	tr.Observe("!room:b", "$img2")
	tr.Observe("!room:a", "$img3")

	tests := []struct {
		room   string
		want   string
		wantOK bool
	}{
		{"!room:a", "$img3", true},
		{"!room:b", "$img2", true},
		{"!room:c", "", false},
	}
	for _, tt := range tests {
		got, ok := tr.Latest(tt.room)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Latest(%q) = %q, %v; want %q, %v", tt.room, got, ok, tt.want, tt.wantOK)
		}
	}

	if tr.Len() != 2 {
		t.Errorf("Len: got %d, want 2", tr.Len())
	}
}

func TestTracker_Concurrent(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := fmt.Sprintf("!room:%d", i)
			for j := 0; j < 100; j++ {
				tr.Observe(room, fmt.Sprintf("$img%d", j))
				tr.Latest(room)
			}
		}(i)
	}
	wg.Wait()

	if tr.Len() != 8 {
		t.Fatalf("Len: got %d, want 8", tr.Len())
	}
	for i := 0; i < 8; i++ {
		got, _ := tr.Latest(fmt.Sprintf("!room:%d", i))
		if got != "$img99" {
			t.Errorf("room %d: got %q, want $img99", i, got)
		}
	}
}
