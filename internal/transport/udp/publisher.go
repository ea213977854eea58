// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"
)

// HeaderSize is the fixed length of the packet header.
const HeaderSize = 4 + 8 + 2

/*
UDP Packet Structure (BigEndian)

|<---- 4 Bytes ---->|<------ 8 Bytes ------>|<-- 2 Bytes -->|<----- N Bytes ----->|
+-------------------+-----------------------+---------------+---------------------+
|  Sequence Number  |       Timestamp       |    Payload    |    Event (JSON)     |
|      (uint32)     |   (int64, unix ns)    |  Length (N)   |                     |
+-------------------+-----------------------+---------------+---------------------+
*/

// Publisher sends every event it is given as one datagram.
type Publisher struct {
	sender *UDPSender

	mu          sync.Mutex
	sequenceNum uint32
	packet      bytes.Buffer
}

// NewPublisher dials target and returns a publisher for it.
func NewPublisher(target string) (*Publisher, error) {
	sender, err := NewUDPSender(target)
	if err != nil {
		return nil, err
	}
	return &Publisher{sender: sender}, nil
}

// Send encodes data as JSON and transmits it with a packet header.
func (p *Publisher) Send(data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if len(payload) > math.MaxUint16 {
		return fmt.Errorf("event too large for a datagram: %d bytes", len(payload))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.sequenceNum++
	p.packet.Reset()
	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[0:], p.sequenceNum)
	binary.BigEndian.PutUint64(header[4:], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint16(header[12:], uint16(len(payload)))
	p.packet.Write(header[:])
	p.packet.Write(payload)

	return p.sender.Write(p.packet.Bytes())
}

func (p *Publisher) Close() error {
	return p.sender.Close()
}

// Packet is a decoded datagram.
type Packet struct {
	Sequence uint32
	Time     time.Time
	Payload  json.RawMessage
}

// DecodePacket parses a datagram produced by Publisher.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, fmt.Errorf("short packet: %d bytes", len(b))
	}
	n := int(binary.BigEndian.Uint16(b[12:]))
	if len(b) < HeaderSize+n {
		return Packet{}, fmt.Errorf("truncated packet: want %d payload bytes, have %d", n, len(b)-HeaderSize)
	}
	return Packet{
		Sequence: binary.BigEndian.Uint32(b[0:]),
		Time:     time.Unix(0, int64(binary.BigEndian.Uint64(b[4:]))),
		Payload:  json.RawMessage(b[HeaderSize : HeaderSize+n]),
	}, nil
}
