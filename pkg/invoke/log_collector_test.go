package invoke

import "testing"

func TestLogCollector_Truncates(t *testing.T) {
	c := NewLogCollector(10)
	c.Log("12345")
	c.Log("6789")
	c.Log("overflow")
	c.Log("dropped")
	c.Log("x")
	c.Log("y")

	msgs := c.Messages()
	want := []string{"12345", "6789", "Log truncated", "x"}
	if len(msgs) != len(want) {
		t.Fatalf("Expected %q, got %q", want, msgs)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], msgs[i])
		}
	}
	if c.BytesWritten() != 10 {
		t.Errorf("Expected 10 bytes written, got %d", c.BytesWritten())
	}
	if !c.Truncated() {
		t.Error("Expected collector to be truncated")
	}
}

func TestLogCollector_DefaultLimit(t *testing.T) {
	c := NewLogCollector(0)
	if c.limit != DefaultLogLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultLogLimit, c.limit)
	}
}
