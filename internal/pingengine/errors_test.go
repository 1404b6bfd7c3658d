package pingengine

import "testing"

func TestErrorKindStringTaxonomy(t *testing.T) {
	cases := []struct {
		kind ErrorKind
		want string
	}{
		{IncorrectBufferSize, "incorrect_buffer_size"},
		{MalformedPacket, "malformed_packet"},
		{Timeout, "timeout"},
		{EchoRequestPacket, "echo_request_packet"},
		{NetworkError, "network_error"},
		{IdenticalRequests, "identical_requests"},
		{IOErrorKind("connection refused"), "io_error: connection refused"},
	}
	for _, c := range cases {
		if got := c.kind.String(); got != c.want {
			t.Errorf("%#v.String() = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestErrorKindHashableAsMapKey(t *testing.T) {
	m := map[ErrorKind]int{}
	m[Timeout]++
	m[Timeout]++
	m[IOErrorKind("refused")]++

	if m[Timeout] != 2 {
		t.Errorf("m[Timeout] = %d, want 2", m[Timeout])
	}
	if m[IOErrorKind("refused")] != 1 {
		t.Errorf("m[IOErrorKind(refused)] = %d, want 1", m[IOErrorKind("refused")])
	}
}
