// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package o5m implements a streaming decoder for the o5m and o5c
// OpenStreetMap binary formats, writing the records it decodes into
// memory.Buffer items via the builder package.
package o5m

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/destel/rill"
	"google.golang.org/protobuf/encoding/protowire"

	"m4o.io/o5m/builder"
	"m4o.io/o5m/delta"
	"m4o.io/o5m/internal/core"
	"m4o.io/o5m/memory"
	"m4o.io/o5m/model"
	"m4o.io/o5m/reftable"
)

// Source supplies the raw bytes of an o5m/o5c stream in arbitrary-sized
// chunks. GetInput returns the next chunk, blocking if necessary;
// InputDone reports whether the source is exhausted, checked before a
// blocking call to GetInput so a Decoder never blocks past a clean end
// of input.
type Source interface {
	GetInput() ([]byte, error)
	InputDone() bool
}

// Decoder parses a single o5m/o5c stream into a sequence of memory.Buffer
// values. A Decoder is not safe for concurrent use and is single-shot:
// Run consumes the Source to completion.
type Decoder struct {
	src Source
	opt decoderOptions

	window *core.PooledBuffer

	refTable reftable.Table

	deltaID        delta.Decoder
	deltaLon       delta.Decoder
	deltaLat       delta.Decoder
	deltaTimestamp delta.Decoder
	deltaChangeset delta.Decoder
	deltaWayNode   delta.Decoder
	deltaMember    [3]delta.Decoder

	header     model.Header
	headerDone bool

	buf *memory.Buffer
}

// NewDecoder constructs a Decoder reading from src.
func NewDecoder(src Source, opts ...DecoderOption) (*Decoder, error) {
	if src == nil {
		return nil, fmt.Errorf("o5m: nil source")
	}

	cfg := defaultDecoderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Decoder{
		src:    src,
		opt:    cfg,
		window: core.NewPooledBuffer(),
	}, nil
}

// Header returns the header accumulated so far: the bounding boxes and
// timestamp markers decoded up to the current point in the stream.
func (d *Decoder) Header() model.Header { return d.header }

// Run decodes the stream, starting with the magic/type/version prelude,
// then looping the dataset state machine until the source is exhausted
// or ctx is canceled. Every committed record is eventually delivered on
// the returned channel as part of a *memory.Buffer; the channel closes
// after a final empty sentinel buffer, once every decoded buffer
// (including any chain segments GrowChain detached along the way) has
// been sent. When decoding fails, the error is attached to that final
// sentinel.
//
// Canceling ctx finishes the dataset record in flight, if any, then
// flushes and returns; there is no forced mid-record interrupt.
func (d *Decoder) Run(ctx context.Context) <-chan rill.Try[*memory.Buffer] {
	out := make(chan rill.Try[*memory.Buffer])

	go func() {
		defer close(out)
		defer d.window.Close()

		if err := d.decodeMagicHeader(); err != nil {
			slog.Error("o5m: invalid stream header", "error", err)
			out <- rill.Try[*memory.Buffer]{Value: memory.NewBuffer(memory.Align, memory.GrowNone), Error: err}

			return
		}

		d.buf = memory.NewBuffer(d.opt.bufferCapacity, d.opt.growMode)

		for {
			select {
			case <-ctx.Done():
				d.flush(out)

				return
			default:
			}

			more, err := d.decodeOneRecord(out)
			if err != nil {
				slog.Error("o5m: decode failed", "error", err)

				for d.buf.HasChain() {
					out <- rill.Try[*memory.Buffer]{Value: d.buf.DetachDeepest()}
				}

				out <- rill.Try[*memory.Buffer]{Value: d.buf}
				out <- rill.Try[*memory.Buffer]{Value: memory.NewBuffer(memory.Align, memory.GrowNone), Error: err}

				return
			}

			if !more {
				break
			}
		}

		d.flush(out)
	}()

	return out
}

func (d *Decoder) decodeMagicHeader() error {
	b, err := d.readBytes(7)
	if err != nil {
		return fmt.Errorf("o5m: reading header: %w", err)
	}

	if !bytes.Equal(b[:5], magicHeader[:]) {
		return newFormatError("wrong header magic")
	}

	switch b[5] {
	case fileTypeO5m:
		d.header.HasMultipleObjectVersions = false
	case fileTypeO5c:
		d.header.HasMultipleObjectVersions = true
	default:
		return newFormatError("wrong header magic")
	}

	if b[6] != formatVersion2 {
		return newFormatError("wrong header magic")
	}

	return nil
}

// decodeOneRecord decodes the next length-prefixed dataset record, or
// acts on the no-length-prefix bytes above datasetJump. It reports
// more=false at a clean end of input, or, when the caller asked for no
// entity types at all, as soon as the header is done.
func (d *Decoder) decodeOneRecord(out chan<- rill.Try[*memory.Buffer]) (bool, error) {
	dt, ok, err := d.readDatasetType()
	if err != nil {
		return false, err
	}

	if !ok {
		return false, nil
	}

	if !dt.hasLengthPrefix() {
		if dt == datasetReset {
			d.reset()
		}

		return true, nil
	}

	length, err := d.readVarintLen()
	if err != nil {
		return false, err
	}

	payload, err := d.readBytes(int(length))
	if err != nil {
		return false, err
	}

	switch dt {
	case datasetNode:
		d.headerDone = true

		if d.opt.readTypes.includes(dt) {
			if err := d.decodeNode(payload); err != nil {
				return false, err
			}

			if _, err := d.buf.Commit(); err != nil {
				return false, err
			}

			d.maybeRotate(out)
		}
	case datasetWay:
		d.headerDone = true

		if d.opt.readTypes.includes(dt) {
			if err := d.decodeWay(payload); err != nil {
				return false, err
			}

			if _, err := d.buf.Commit(); err != nil {
				return false, err
			}

			d.maybeRotate(out)
		}
	case datasetRelation:
		d.headerDone = true

		if d.opt.readTypes.includes(dt) {
			if err := d.decodeRelation(payload); err != nil {
				return false, err
			}

			if _, err := d.buf.Commit(); err != nil {
				return false, err
			}

			d.maybeRotate(out)
		}
	case datasetBoundingBox:
		if err := d.decodeBBox(payload); err != nil {
			return false, err
		}
	case datasetTimestamp:
		if err := d.decodeTimestamp(payload); err != nil {
			return false, err
		}
	default:
		// Header, sync and unknown dataset types carry no state this
		// decoder tracks; the payload is already consumed above.
	}

	if d.opt.readTypes == 0 && d.headerDone {
		return false, nil
	}

	return true, nil
}

// maybeRotate drains any buffer chain GrowChain detached during the
// record just committed, deepest segment first, then rotates the head
// buffer itself out once it has crossed the configured high-water mark.
func (d *Decoder) maybeRotate(out chan<- rill.Try[*memory.Buffer]) {
	for d.buf.HasChain() {
		out <- rill.Try[*memory.Buffer]{Value: d.buf.DetachDeepest()}
	}

	if d.buf.Written() >= d.opt.bufferCapacity {
		out <- rill.Try[*memory.Buffer]{Value: d.buf}
		d.buf = memory.NewBuffer(d.opt.bufferCapacity, d.opt.growMode)
	}
}

func (d *Decoder) flush(out chan<- rill.Try[*memory.Buffer]) {
	for d.buf.HasChain() {
		out <- rill.Try[*memory.Buffer]{Value: d.buf.DetachDeepest()}
	}

	out <- rill.Try[*memory.Buffer]{Value: d.buf}
	out <- rill.Try[*memory.Buffer]{Value: memory.NewBuffer(memory.Align, memory.GrowNone)}
}

func (d *Decoder) reset() {
	d.refTable.Clear()

	d.deltaID.Clear()
	d.deltaTimestamp.Clear()
	d.deltaChangeset.Clear()
	d.deltaLon.Clear()
	d.deltaLat.Clear()

	d.deltaWayNode.Clear()
	d.deltaMember[0].Clear()
	d.deltaMember[1].Clear()
	d.deltaMember[2].Clear()
}

func (d *Decoder) decodeNode(payload []byte) error {
	c := &cursor{b: payload}

	idDelta, ok := c.zigzag()
	if !ok {
		return newFormatError("truncated node id")
	}

	id := model.ID(d.deltaID.Update(idDelta))

	info, user, err := d.decodeInfo(c)
	if err != nil {
		return err
	}

	if info != nil {
		info.User = user
	}

	visible := !c.eof()

	var lon, lat model.Degrees

	if visible {
		lonDelta, ok := c.zigzag()
		if !ok {
			return newFormatError("truncated longitude")
		}

		lon = model.Degrees(float64(d.deltaLon.Update(lonDelta)) / float64(model.TenMillionths))

		latDelta, ok := c.zigzag()
		if !ok {
			return newFormatError("truncated latitude")
		}

		lat = model.Degrees(float64(d.deltaLat.Update(latDelta)) / float64(model.TenMillionths))
	}

	nb, err := builder.NewNode(d.buf, id, lon, lat, visible, info)
	if err != nil {
		return err
	}

	if visible && !c.eof() {
		tags, err := nb.Tags()
		if err != nil {
			return err
		}

		if err := d.decodeTags(c, tags); err != nil {
			return err
		}

		if err := tags.Close(); err != nil {
			return err
		}
	}

	return nb.Close()
}

func (d *Decoder) decodeWay(payload []byte) error {
	c := &cursor{b: payload}

	idDelta, ok := c.zigzag()
	if !ok {
		return newFormatError("truncated way id")
	}

	id := model.ID(d.deltaID.Update(idDelta))

	info, user, err := d.decodeInfo(c)
	if err != nil {
		return err
	}

	if info != nil {
		info.User = user
	}

	visible := !c.eof()

	wb, err := builder.NewWay(d.buf, id, visible, info)
	if err != nil {
		return err
	}

	if visible {
		refLen, ok := c.varint()
		if !ok {
			return newFormatError("truncated way node ref section length")
		}

		if refLen > 0 {
			refBytes, ok := c.bytes(int(refLen))
			if !ok {
				return newFormatError("way nodes ref section too long")
			}

			nodes, err := wb.Nodes()
			if err != nil {
				return err
			}

			rc := &cursor{b: refBytes}

			for !rc.eof() {
				refDelta, ok := rc.zigzag()
				if !ok {
					return newFormatError("truncated way node ref")
				}

				if err := nodes.AddNodeRef(model.ID(d.deltaWayNode.Update(refDelta))); err != nil {
					return err
				}
			}

			if err := nodes.Close(); err != nil {
				return err
			}
		}

		if !c.eof() {
			tags, err := wb.Tags()
			if err != nil {
				return err
			}

			if err := d.decodeTags(c, tags); err != nil {
				return err
			}

			if err := tags.Close(); err != nil {
				return err
			}
		}
	}

	return wb.Close()
}

func (d *Decoder) decodeRelation(payload []byte) error {
	c := &cursor{b: payload}

	idDelta, ok := c.zigzag()
	if !ok {
		return newFormatError("truncated relation id")
	}

	id := model.ID(d.deltaID.Update(idDelta))

	info, user, err := d.decodeInfo(c)
	if err != nil {
		return err
	}

	if info != nil {
		info.User = user
	}

	visible := !c.eof()

	rb, err := builder.NewRelation(d.buf, id, visible, info)
	if err != nil {
		return err
	}

	if visible {
		refLen, ok := c.varint()
		if !ok {
			return newFormatError("truncated relation member section length")
		}

		if refLen > 0 {
			refBytes, ok := c.bytes(int(refLen))
			if !ok {
				return newFormatError("relation format error")
			}

			members, err := rb.Members()
			if err != nil {
				return err
			}

			rc := &cursor{b: refBytes}

			for !rc.eof() {
				memberDelta, ok := rc.zigzag()
				if !ok {
					return newFormatError("truncated relation member id")
				}

				if rc.eof() {
					return newFormatError("relation member format error")
				}

				mt, role, err := d.decodeRole(rc)
				if err != nil {
					return err
				}

				ref := model.ID(d.deltaMember[mt].Update(memberDelta))

				if err := members.AddMember(mt, ref, role); err != nil {
					return err
				}
			}

			if err := members.Close(); err != nil {
				return err
			}
		}

		if !c.eof() {
			tags, err := rb.Tags()
			if err != nil {
				return err
			}

			if err := d.decodeTags(c, tags); err != nil {
				return err
			}

			if err := tags.Close(); err != nil {
				return err
			}
		}
	}

	return rb.Close()
}

func (d *Decoder) decodeBBox(payload []byte) error {
	c := &cursor{b: payload}

	swLon, ok := c.zigzag()
	if !ok {
		return newFormatError("truncated bounding box")
	}

	swLat, ok := c.zigzag()
	if !ok {
		return newFormatError("truncated bounding box")
	}

	neLon, ok := c.zigzag()
	if !ok {
		return newFormatError("truncated bounding box")
	}

	neLat, ok := c.zigzag()
	if !ok {
		return newFormatError("truncated bounding box")
	}

	d.header.AddBox(model.BoundingBox{
		Left:   model.Degrees(float64(swLon) / float64(model.TenMillionths)),
		Bottom: model.Degrees(float64(swLat) / float64(model.TenMillionths)),
		Right:  model.Degrees(float64(neLon) / float64(model.TenMillionths)),
		Top:    model.Degrees(float64(neLat) / float64(model.TenMillionths)),
	})

	return nil
}

func (d *Decoder) decodeTimestamp(payload []byte) error {
	c := &cursor{b: payload}

	ts, ok := c.zigzag()
	if !ok {
		return newFormatError("truncated timestamp")
	}

	d.header.Timestamp = time.Unix(ts, 0).UTC()

	return nil
}

// decodeInfo decodes the optional version/timestamp/changeset/author
// block that follows a Node/Way/Relation's id. It returns a nil *Info
// when the record carries none at all (a single 0x00 byte on the
// wire); when the delta-decoded timestamp comes out to zero, the
// returned Info carries Version but leaves Changeset and User zero, and
// the author (if any) is never read off the wire.
func (d *Decoder) decodeInfo(c *cursor) (*model.Info, string, error) {
	first, ok := c.peekByte()
	if !ok {
		return nil, "", newFormatError("premature end of file while parsing object metadata")
	}

	if first == 0 {
		c.advance(1)

		return nil, "", nil
	}

	version, ok := c.varint()
	if !ok {
		return nil, "", newFormatError("truncated version")
	}

	tsDelta, ok := c.zigzag()
	if !ok {
		return nil, "", newFormatError("truncated timestamp")
	}

	ts := d.deltaTimestamp.Update(tsDelta)

	info := &model.Info{Version: int32(version)}

	if ts == 0 {
		return info, "", nil
	}

	info.Timestamp = time.Unix(ts, 0).UTC()

	csDelta, ok := c.zigzag()
	if !ok {
		return nil, "", newFormatError("truncated changeset")
	}

	info.Changeset = model.ID(d.deltaChangeset.Update(csDelta))

	if c.eof() {
		return info, "", nil
	}

	uid, user, err := d.decodeUser(c)
	if err != nil {
		return nil, "", err
	}

	info.UID = uid

	return info, user, nil
}

// decodeString resolves one reference-table-compressible string unit: a
// leading 0x00 byte means the unit follows inline in c, still to be
// scanned and measured by the caller; any other leading byte is a
// varint back-reference index into the table. It does not itself
// insert inline data into the table or advance c past inline data — the
// caller knows the unit's true length and does both once it has scanned
// it.
func (d *Decoder) decodeString(c *cursor) ([]byte, bool, error) {
	first, ok := c.peekByte()
	if !ok {
		return nil, false, newFormatError("string format error")
	}

	if first == 0 {
		c.advance(1)

		if c.eof() {
			return nil, false, newFormatError("string format error")
		}

		return c.remaining(), true, nil
	}

	index, ok := c.varint()
	if !ok {
		return nil, false, newFormatError("truncated reference index")
	}

	s, err := d.refTable.Get(index)
	if err != nil {
		return nil, false, newFormatError(err.Error())
	}

	return s, false, nil
}

// decodeUser resolves an author unit: varint(uid), a single separator
// byte, then a NUL-terminated username — except for the anonymous
// sentinel, uid 0 encoded inline with nothing following, which the
// reference table records as the two-byte string "\x00\x00".
func (d *Decoder) decodeUser(c *cursor) (model.UID, string, error) {
	data, inline, err := d.decodeString(c)
	if err != nil {
		return 0, "", err
	}

	uidVal, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return 0, "", newFormatError("truncated uid")
	}

	if uidVal > math.MaxUint32 {
		return 0, "", newFormatError("uid out of range")
	}

	// uid 0 always means anonymous, whether this unit was written inline
	// or resolved from the table: the table's own trimmed anonymous
	// sentinel ("\x00\x00") carries no separator or name to scan past.
	if uidVal == 0 {
		if inline {
			d.refTable.Add([]byte{0, 0})
			c.advance(n)
		}

		return 0, "", nil
	}

	rest := data[n:]
	if len(rest) == 0 {
		return 0, "", newFormatError("missing user name")
	}

	rest = rest[1:] // the separator byte between the uid varint and the name

	nameEnd := bytes.IndexByte(rest, 0)
	if nameEnd < 0 {
		return 0, "", newFormatError("no null byte in user name")
	}

	name := string(rest[:nameEnd])

	if inline {
		unitLen := n + 1 + nameEnd + 1
		d.refTable.Add(data[:unitLen])
		c.advance(unitLen)
	}

	return model.UID(uidVal), name, nil
}

// decodeTags reads key/value pairs, each its own reference-table unit,
// until c is exhausted.
func (d *Decoder) decodeTags(c *cursor, tags *builder.TagListBuilder) error {
	for !c.eof() {
		data, inline, err := d.decodeString(c)
		if err != nil {
			return err
		}

		keyEnd := bytes.IndexByte(data, 0)
		if keyEnd < 0 {
			return newFormatError("no null byte in tag key")
		}

		rest := data[keyEnd+1:]

		valEnd := bytes.IndexByte(rest, 0)
		if valEnd < 0 {
			return newFormatError("no null byte in tag value")
		}

		key := string(data[:keyEnd])
		value := string(rest[:valEnd])

		if inline {
			unitLen := keyEnd + 1 + valEnd + 1
			d.refTable.Add(data[:unitLen])
			c.advance(unitLen)
		}

		if err := tags.AddTag(key, value); err != nil {
			return err
		}
	}

	return nil
}

// decodeRole reads a relation member's type-plus-role unit: a single
// ASCII digit ('0', '1' or '2') followed by a NUL-terminated role.
func (d *Decoder) decodeRole(c *cursor) (model.MemberType, string, error) {
	data, inline, err := d.decodeString(c)
	if err != nil {
		return 0, "", err
	}

	if len(data) == 0 {
		return 0, "", newFormatError("unknown member type")
	}

	mt, err := model.ParseMemberType(data[0])
	if err != nil {
		return 0, "", newFormatError(err.Error())
	}

	rest := data[1:]
	if len(rest) == 0 {
		return 0, "", newFormatError("missing role")
	}

	roleEnd := bytes.IndexByte(rest, 0)
	if roleEnd < 0 {
		return 0, "", newFormatError("no null byte in role")
	}

	role := string(rest[:roleEnd])

	if inline {
		unitLen := 1 + roleEnd + 1
		d.refTable.Add(data[:unitLen])
		c.advance(unitLen)
	}

	return mt, role, nil
}

// fill pulls one more chunk from the source into the window, reporting
// ok=false at a clean end of input.
func (d *Decoder) fill() (bool, error) {
	if d.src.InputDone() {
		return false, nil
	}

	chunk, err := d.src.GetInput()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}

		return false, err
	}

	if len(chunk) == 0 {
		return false, nil
	}

	if _, err := d.window.Write(chunk); err != nil {
		return false, err
	}

	return true, nil
}

// ensureBytesAvailable tops up the window until it holds at least need
// bytes, or the source is exhausted.
func (d *Decoder) ensureBytesAvailable(need int) error {
	for d.window.Len() < need {
		ok, err := d.fill()
		if err != nil {
			return err
		}

		if !ok {
			return io.EOF
		}
	}

	return nil
}

// readDatasetType reads the next record's leading byte. ok is false
// only at a clean boundary: no bytes pending and the source exhausted.
func (d *Decoder) readDatasetType() (datasetType, bool, error) {
	if err := d.ensureBytesAvailable(1); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}

		return 0, false, err
	}

	return datasetType(d.window.Next(1)[0]), true, nil
}

// readVarintLen decodes a plain (non-zigzag) varint directly off the
// window, pulling more input a chunk at a time until the whole varint
// is available.
func (d *Decoder) readVarintLen() (uint64, error) {
	for {
		v, n := protowire.ConsumeVarint(d.window.Bytes())
		if n > 0 {
			d.window.Next(n)

			return v, nil
		}

		ok, err := d.fill()
		if err != nil {
			return 0, err
		}

		if !ok {
			return 0, newFormatError("premature end of file")
		}
	}
}

// readBytes returns the next n bytes off the window, a mid-record short
// read is always a format error, never a clean end of stream.
func (d *Decoder) readBytes(n int) ([]byte, error) {
	if err := d.ensureBytesAvailable(n); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newFormatError("premature end of file")
		}

		return nil, err
	}

	return d.window.Next(n), nil
}
