// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"aura/internal/blob"
)

type captureSink struct {
	packets [][]byte
}

func (s *captureSink) Send(data []byte) error {
	packet := make([]byte, len(data))
	copy(packet, data)
	s.packets = append(s.packets, packet)
	return nil
}

func (s *captureSink) Close() error { return nil }

type staticSource struct {
	frame blob.Frame
}

func (s *staticSource) LatestFrame() blob.Frame { return s.frame }

func testFrame(seq uint64) blob.Frame {
	return blob.Frame{
		Seq:        seq,
		Mode:       "active",
		Vertices:   []float64{10, 0, 0, 10, -10, 0, 0, -10},
		BaseRadius: 100,
		Hue:        210,
		Saturation: 0.6,
		Brightness: 0.8,
		Flash:      0.25,
		Recording:  true,
	}
}

func TestPackRoundTrip(t *testing.T) {
	sink := &captureSink{}
	pub, err := NewPublisher(time.Millisecond, sink, &staticSource{frame: testFrame(7)})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	pub.publishLatest()
	if len(sink.packets) != 1 {
		t.Fatalf("sent %d packets, want 1", len(sink.packets))
	}
	packet := sink.packets[0]

	wantLen := 4 + 4 + 1 + 1 + 2 + 5*4 + 8*4
	if len(packet) != wantLen {
		t.Fatalf("packet length = %d, want %d", len(packet), wantLen)
	}

	le := binary.LittleEndian
	if got := le.Uint32(packet[0:]); got != PacketMagic {
		t.Fatalf("magic = %#x, want %#x", got, PacketMagic)
	}
	if got := le.Uint32(packet[4:]); got != 7 {
		t.Fatalf("sequence = %d, want 7", got)
	}
	if packet[8] != 2 {
		t.Fatalf("mode byte = %d, want 2 (active)", packet[8])
	}
	if packet[9]&1 == 0 {
		t.Fatal("recording flag not set")
	}
	if got := le.Uint16(packet[10:]); got != 4 {
		t.Fatalf("vertex count = %d, want 4", got)
	}
	if got := math.Float32frombits(le.Uint32(packet[12:])); got != 210 {
		t.Fatalf("hue = %v, want 210", got)
	}
	firstX := math.Float32frombits(le.Uint32(packet[32:]))
	if firstX != 10 {
		t.Fatalf("first vertex x = %v, want 10", firstX)
	}
}

func TestPublisherSkipsRepeatedFrames(t *testing.T) {
	sink := &captureSink{}
	source := &staticSource{frame: testFrame(3)}
	pub, _ := NewPublisher(time.Millisecond, sink, source)

	pub.publishLatest()
	pub.publishLatest()
	if len(sink.packets) != 1 {
		t.Fatalf("repeated frame sent %d times, want 1", len(sink.packets))
	}

	source.frame = testFrame(4)
	pub.publishLatest()
	if len(sink.packets) != 2 {
		t.Fatalf("new frame not sent, have %d packets", len(sink.packets))
	}
}

func TestPublisherSkipsZeroSequence(t *testing.T) {
	sink := &captureSink{}
	pub, _ := NewPublisher(time.Millisecond, sink, &staticSource{frame: blob.Frame{}})

	pub.publishLatest()
	if len(sink.packets) != 0 {
		t.Fatal("published before any frame was produced")
	}
}

func TestPublisherStartStopIdempotent(t *testing.T) {
	sink := &captureSink{}
	pub, _ := NewPublisher(time.Millisecond, sink, &staticSource{frame: testFrame(1)})

	pub.Start()
	pub.Start() // no-op
	time.Sleep(10 * time.Millisecond)

	if err := pub.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := pub.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if len(sink.packets) == 0 {
		t.Fatal("running publisher never sent a packet")
	}
}

func TestNewPublisherValidation(t *testing.T) {
	if _, err := NewPublisher(time.Millisecond, nil, &staticSource{}); err == nil {
		t.Fatal("nil sink accepted")
	}
	if _, err := NewPublisher(time.Millisecond, &captureSink{}, nil); err == nil {
		t.Fatal("nil source accepted")
	}
}
