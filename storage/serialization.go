// Copyright 2025 Poiesic Systems
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


package storage

import (
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/chatsync/core"
)

// Hand-written MUS serializers for the stored record types. Timestamps are
// encoded as Unix microseconds.

// CheckpointMUS serializes core.Checkpoint values.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

var _ mus.Serializer[core.Checkpoint] = CheckpointMUS

func (checkpointMUS) Marshal(c core.Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(c.Scope, bs)
	n += ord.String.Marshal(c.Cursor, bs[n:])
	n += varint.Int64.Marshal(c.UpdatedAt.UnixMicro(), bs[n:])
	return
}

func (checkpointMUS) Unmarshal(bs []byte) (c core.Checkpoint, n int, err error) {
	var n1 int
	c.Scope, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Cursor, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.UpdatedAt = time.UnixMicro(micros).UTC()
	return
}

func (checkpointMUS) Size(c core.Checkpoint) (n int) {
	n = ord.String.Size(c.Scope)
	n += ord.String.Size(c.Cursor)
	n += varint.Int64.Size(c.UpdatedAt.UnixMicro())
	return
}

func (checkpointMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}

// VectorMUS serializes core.Vector values.
var VectorMUS = vectorMUS{}

type vectorMUS struct{}

var _ mus.Serializer[core.Vector] = VectorMUS

func (vectorMUS) Marshal(v core.Vector, bs []byte) (n int) {
	n = ord.String.Marshal(v.Key, bs)
	n += marshalFloat32Slice(v.Embedding, bs[n:])
	n += metadataMUS{}.Marshal(v.Metadata, bs[n:])
	return
}

func (vectorMUS) Unmarshal(bs []byte) (v core.Vector, n int, err error) {
	var n1 int
	v.Key, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Embedding, n1, err = unmarshalFloat32Slice(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Metadata, n1, err = metadataMUS{}.Unmarshal(bs[n:])
	n += n1
	return
}

func (vectorMUS) Size(v core.Vector) (n int) {
	n = ord.String.Size(v.Key)
	n += sizeFloat32Slice(v.Embedding)
	n += metadataMUS{}.Size(v.Metadata)
	return
}

func (vectorMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = skipFloat32Slice(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = metadataMUS{}.Skip(bs[n:])
	n += n1
	return
}

// metadataMUS serializes core.VectorMetadata values.
type metadataMUS struct{}

var _ mus.Serializer[core.VectorMetadata] = metadataMUS{}

func (metadataMUS) Marshal(m core.VectorMetadata, bs []byte) (n int) {
	n = ord.String.Marshal(m.Type, bs)
	n += ord.String.Marshal(m.SourceID, bs[n:])
	n += ord.String.Marshal(m.Timestamp, bs[n:])
	n += marshalStringSlice(m.Topics, bs[n:])
	n += ord.String.Marshal(m.PrimaryTopic, bs[n:])
	n += ord.Bool.Marshal(m.IsThreadComplete, bs[n:])
	n += ord.String.Marshal(m.StartTime, bs[n:])
	n += ord.String.Marshal(m.EndTime, bs[n:])
	n += varint.Int.Marshal(m.MessageCount, bs[n:])
	n += ord.String.Marshal(m.ChunkText, bs[n:])
	n += ord.String.Marshal(m.ProjectID, bs[n:])
	n += ord.String.Marshal(m.Source, bs[n:])
	return
}

func (metadataMUS) Unmarshal(bs []byte) (m core.VectorMetadata, n int, err error) {
	var n1 int
	m.Type, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	if m.SourceID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Timestamp, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Topics, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.PrimaryTopic, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.IsThreadComplete, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.StartTime, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.EndTime, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.MessageCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.ChunkText, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.ProjectID, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	if m.Source, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	return
}

func (metadataMUS) Size(m core.VectorMetadata) (n int) {
	n = ord.String.Size(m.Type)
	n += ord.String.Size(m.SourceID)
	n += ord.String.Size(m.Timestamp)
	n += sizeStringSlice(m.Topics)
	n += ord.String.Size(m.PrimaryTopic)
	n += ord.Bool.Size(m.IsThreadComplete)
	n += ord.String.Size(m.StartTime)
	n += ord.String.Size(m.EndTime)
	n += varint.Int.Size(m.MessageCount)
	n += ord.String.Size(m.ChunkText)
	n += ord.String.Size(m.ProjectID)
	n += ord.String.Size(m.Source)
	return
}

func (metadataMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	for i := 0; i < 2; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	if n1, err = skipStringSlice(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = ord.Bool.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	for i := 0; i < 2; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	for i := 0; i < 3; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return
}

// Length-prefixed slice helpers.

func marshalFloat32Slice(vs []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(vs), bs)
	for _, v := range vs {
		n += varint.Float32.Marshal(v, bs[n:])
	}
	return
}

func unmarshalFloat32Slice(bs []byte) (vs []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	vs = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		if vs[i], n1, err = varint.Float32.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
	}
	return
}

func sizeFloat32Slice(vs []float32) (n int) {
	n = varint.Int.Size(len(vs))
	for _, v := range vs {
		n += varint.Float32.Size(v)
	}
	return
}

func skipFloat32Slice(bs []byte) (n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < length; i++ {
		if n1, err = varint.Float32.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return
}

func marshalStringSlice(vs []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(vs), bs)
	for _, v := range vs {
		n += ord.String.Marshal(v, bs[n:])
	}
	return
}

func unmarshalStringSlice(bs []byte) (vs []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return
	}
	vs = make([]string, length)
	var n1 int
	for i := 0; i < length; i++ {
		if vs[i], n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
	}
	return
}

func sizeStringSlice(vs []string) (n int) {
	n = varint.Int.Size(len(vs))
	for _, v := range vs {
		n += ord.String.Size(v)
	}
	return
}

func skipStringSlice(bs []byte) (n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < length; i++ {
		if n1, err = ord.String.Skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return
}

// MarshalVector serializes a Vector to bytes.
func MarshalVector(vector *core.Vector) []byte {
	buf := make([]byte, VectorMUS.Size(*vector))
	VectorMUS.Marshal(*vector, buf)
	return buf
}

// UnmarshalVector deserializes a Vector from bytes.
func UnmarshalVector(data []byte) (*core.Vector, error) {
	vector, _, err := VectorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &vector, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, CheckpointMUS.Size(*checkpoint))
	CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}
