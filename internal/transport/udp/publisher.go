// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"sync"
	"time"

	"github.com/pkg/errors"

	"aura/internal/blob"
	applog "aura/internal/log"
)

// PacketMagic identifies an aura geometry packet.
const PacketMagic uint32 = 0x41555246 // "AURF"

// FrameSource yields the most recent rendered frame. The visualizer
// implements it.
type FrameSource interface {
	LatestFrame() blob.Frame
}

// PacketSink is where packed frames go. *Sender is the production
// implementation.
type PacketSink interface {
	Send(data []byte) error
	Close() error
}

// Publisher periodically pulls the latest frame from its source, packs
// it into a compact binary packet, and sends it over UDP. It runs in a
// goroutine managed by Start and Stop.
type Publisher struct {
	sink     PacketSink
	source   FrameSource
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // protects ticker and doneChan during Start/Stop

	lastSeq uint64

	// Reusable buffers for the hot path.
	f32Buffer    []float32
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a publisher. An interval <= 0 defaults to 16ms.
func NewPublisher(interval time.Duration, sink PacketSink, source FrameSource) (*Publisher, error) {
	if sink == nil {
		return nil, errors.New("udp publisher: sink cannot be nil")
	}
	if source == nil {
		return nil, errors.New("udp publisher: frame source cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDP: invalid publish interval, defaulting to %s", interval)
	}

	return &Publisher{
		sink:         sink,
		source:       source,
		interval:     interval,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Start launches the publisher goroutine. Calling Start while running
// is a no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDP: publisher already running")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDP: publisher started (interval %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publishLatest()
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the goroutine to exit and waits for it. Safe to call
// more than once.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDP: publisher stopped")
	return nil
}

// Close implements io.Closer by stopping the publisher.
func (p *Publisher) Close() error {
	return p.Stop()
}

// publishLatest packs and sends the current frame. A frame already
// sent (same sequence number) is skipped.
func (p *Publisher) publishLatest() {
	frame := p.source.LatestFrame()
	if frame.Seq == 0 || frame.Seq == p.lastSeq {
		return
	}
	p.lastSeq = frame.Seq

	packet, err := p.pack(&frame)
	if err != nil {
		applog.Errorf("UDP: packing frame %d: %v", frame.Seq, err)
		return
	}

	if err := p.sink.Send(packet); err != nil {
		applog.Debugf("UDP: send failed: %v", err)
		return
	}
	applog.Debugf("UDP: sent frame %d (%d bytes)", frame.Seq, len(packet))
}

/*
Packet layout (little-endian):

	magic          uint32   packet identifier, "AURF"
	sequence       uint32   low 32 bits of the frame sequence
	mode           uint8    0 idle, 1 connecting, 2 active
	flags          uint8    bit 0: recording
	vertex count   uint16   number of x,y pairs (N)
	hue            float32  degrees
	saturation     float32
	brightness     float32
	flash          float32
	base radius    float32  pixels
	vertices       [2N]float32  interleaved x,y
*/
func (p *Publisher) pack(frame *blob.Frame) ([]byte, error) {
	if cap(p.f32Buffer) < len(frame.Vertices) {
		p.f32Buffer = make([]float32, len(frame.Vertices))
	}
	p.f32Buffer = p.f32Buffer[:len(frame.Vertices)]
	for i, v := range frame.Vertices {
		p.f32Buffer[i] = float32(v)
	}

	var mode uint8
	switch frame.Mode {
	case "connecting":
		mode = 1
	case "active":
		mode = 2
	}
	var flags uint8
	if frame.Recording {
		flags |= 1
	}

	p.packetBuffer.Reset()
	w := p.packetBuffer

	fields := []any{
		PacketMagic,
		uint32(frame.Seq),
		mode,
		flags,
		uint16(len(frame.Vertices) / 2),
		float32(frame.Hue),
		float32(frame.Saturation),
		float32(frame.Brightness),
		float32(frame.Flash),
		float32(frame.BaseRadius),
		p.f32Buffer,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return nil, err
		}
	}

	return p.packetBuffer.Bytes(), nil
}
