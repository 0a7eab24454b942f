package catalog

import (
	"github.com/gogo/protobuf/proto"
)

// Catalog records, encoded with gogo/protobuf:
//
//	message CatalogState {
//	    int32           major_vers        = 1;
//	    int32           minor_vers        = 2;
//	    int32           max_pattern_size  = 3;
//	    repeated uint64 num_patterns      = 4;  // indexed by vertex count
//	}
//
//	message ArcList {
//	    repeated ArcRecord arcs = 1;
//	}
//
//	message ArcRecord {
//	    sint32            target_order = 1;  // order of the added vertex in the cataloged pattern
//	    repeated int32    target_types = 2;
//	    double            weight       = 3;
//	    repeated ArcEdge  edges        = 4;
//	}
//
//	message ArcEdge {
//	    sint32          other_order = 1;  // order of the other endpoint in the cataloged pattern, or -1 for a loop
//	    repeated int32  types       = 2;
//	    int32           dir         = 3;  // as seen from the added vertex
//	    double          weight      = 4;
//	}

type CatalogState struct {
	MajorVers      int32    `protobuf:"varint,1,opt,name=major_vers,json=majorVers,proto3" json:"major_vers,omitempty"`
	MinorVers      int32    `protobuf:"varint,2,opt,name=minor_vers,json=minorVers,proto3" json:"minor_vers,omitempty"`
	MaxPatternSize int32    `protobuf:"varint,3,opt,name=max_pattern_size,json=maxPatternSize,proto3" json:"max_pattern_size,omitempty"`
	NumPatterns    []uint64 `protobuf:"varint,4,rep,packed,name=num_patterns,json=numPatterns,proto3" json:"num_patterns,omitempty"`
}

func (m *CatalogState) Reset()         { *m = CatalogState{} }
func (m *CatalogState) String() string { return proto.CompactTextString(m) }
func (*CatalogState) ProtoMessage()    {}

type ArcList struct {
	Arcs []*ArcRecord `protobuf:"bytes,1,rep,name=arcs,proto3" json:"arcs,omitempty"`
}

func (m *ArcList) Reset()         { *m = ArcList{} }
func (m *ArcList) String() string { return proto.CompactTextString(m) }
func (*ArcList) ProtoMessage()    {}

type ArcRecord struct {
	TargetOrder int32      `protobuf:"zigzag32,1,opt,name=target_order,json=targetOrder,proto3" json:"target_order,omitempty"`
	TargetTypes []int32    `protobuf:"varint,2,rep,packed,name=target_types,json=targetTypes,proto3" json:"target_types,omitempty"`
	Weight      float64    `protobuf:"fixed64,3,opt,name=weight,proto3" json:"weight,omitempty"`
	Edges       []*ArcEdge `protobuf:"bytes,4,rep,name=edges,proto3" json:"edges,omitempty"`
}

func (m *ArcRecord) Reset()         { *m = ArcRecord{} }
func (m *ArcRecord) String() string { return proto.CompactTextString(m) }
func (*ArcRecord) ProtoMessage()    {}

type ArcEdge struct {
	OtherOrder int32   `protobuf:"zigzag32,1,opt,name=other_order,json=otherOrder,proto3" json:"other_order,omitempty"`
	Types      []int32 `protobuf:"varint,2,rep,packed,name=types,proto3" json:"types,omitempty"`
	Dir        int32   `protobuf:"varint,3,opt,name=dir,proto3" json:"dir,omitempty"`
	Weight     float64 `protobuf:"fixed64,4,opt,name=weight,proto3" json:"weight,omitempty"`
}

func (m *ArcEdge) Reset()         { *m = ArcEdge{} }
func (m *ArcEdge) String() string { return proto.CompactTextString(m) }
func (*ArcEdge) ProtoMessage()    {}
