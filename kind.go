// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pyrdt

import "fmt"

// TableKind is the closed set of record tables a codeplug image
// carries (§3).
type TableKind int

const (
	Settings TableKind = iota
	Channel
	Contact
	RxGroup
	Scanlist
	Textmessage
	Zone
)

// tableKindOrder is the fixed load/dump order mandated by §4.7: it
// mirrors the teacher's own fixed parse sequence in pe.go's Parse().
var tableKindOrder = []TableKind{
	Settings, Channel, Contact, RxGroup, Scanlist, Textmessage, Zone,
}

func (k TableKind) String() string {
	switch k {
	case Settings:
		return "Settings"
	case Channel:
		return "Channel"
	case Contact:
		return "Contact"
	case RxGroup:
		return "RxGroup"
	case Scanlist:
		return "Scanlist"
	case Textmessage:
		return "Textmessage"
	case Zone:
		return "Zone"
	}
	return fmt.Sprintf("TableKind(%d)", int(k))
}

// deletionRule is a (byte offset, sentinel value) pair: a record is
// deleted iff the byte at that offset within the record equals value.
type deletionRule struct {
	offset int
	value  byte
}

// geometry fixes everything about a table kind that is not authored in
// its schema: where its records begin, how large they are, how many
// there are, what "unset" looks like, and how deletion is detected.
type geometry struct {
	kind              TableKind
	schemaName        string
	firstRecordOffset int
	recordLength      int
	numRecords        int
	zeroValue         byte
	deletion          deletionRule
}

// geometries is the fixed table in §6. Settings has a nominal deletion
// marker: the table engine evaluates and writes it like any other
// kind's, but nothing treats a deleted Settings row as meaningful; see
// DESIGN.md's Open Question decisions.
var geometries = map[TableKind]geometry{
	Settings: {
		kind: Settings, schemaName: "settings",
		firstRecordOffset: 8805, recordLength: 144, numRecords: 1,
		zeroValue: 0xFF, deletion: deletionRule{offset: 0, value: 0x01},
	},
	Channel: {
		kind: Channel, schemaName: "channel",
		firstRecordOffset: 127013, recordLength: 64, numRecords: 1000,
		zeroValue: 0xFF, deletion: deletionRule{offset: 16, value: 0xFF},
	},
	Contact: {
		kind: Contact, schemaName: "contact",
		firstRecordOffset: 24997, recordLength: 36, numRecords: 1000,
		zeroValue: 0xFF, deletion: deletionRule{offset: 4, value: 0x00},
	},
	RxGroup: {
		kind: RxGroup, schemaName: "rxgroup",
		firstRecordOffset: 60997, recordLength: 96, numRecords: 250,
		zeroValue: 0x00, deletion: deletionRule{offset: 0, value: 0x00},
	},
	Scanlist: {
		kind: Scanlist, schemaName: "scanlist",
		firstRecordOffset: 100997, recordLength: 104, numRecords: 250,
		zeroValue: 0x00, deletion: deletionRule{offset: 0, value: 0x00},
	},
	Textmessage: {
		kind: Textmessage, schemaName: "textmessage",
		firstRecordOffset: 9125, recordLength: 288, numRecords: 50,
		zeroValue: 0x00, deletion: deletionRule{offset: 0, value: 0x00},
	},
	Zone: {
		kind: Zone, schemaName: "zone",
		firstRecordOffset: 84997, recordLength: 64, numRecords: 250,
		zeroValue: 0x00, deletion: deletionRule{offset: 0, value: 0x00},
	},
}
