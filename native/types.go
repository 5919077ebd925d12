package native

import "fmt"

// Handle is a native-side handle value. Zero is never a valid handle.
type Handle uint64

// HandleKind selects what HandleAlloc creates.
type HandleKind uint8

const (
	HandleError HandleKind = iota + 1
	HandleService
	HandleStatement
	HandleRowID
	HandleLob
)

// Mode is the environment creation mode.
type Mode uint32

const (
	ModeDefault  Mode = 0
	ModeThreaded Mode = 1 << 0
	ModeObject   Mode = 1 << 1
	ModeUTF8     Mode = 1 << 2
)

// TypeCode is an external data type code.
type TypeCode uint16

const (
	TypeChar         TypeCode = 1   // VARCHAR2 / NVARCHAR2
	TypeNumber       TypeCode = 2   // NUMBER, 22-byte packed decimal
	TypeInt          TypeCode = 3   // native signed integer
	TypeFloat        TypeCode = 4   // native float
	TypeString       TypeCode = 5   // null-terminated string
	TypeLong         TypeCode = 8   // LONG
	TypeRowIDChar    TypeCode = 11  // ROWID (text form)
	TypeDate         TypeCode = 12  // DATE, 7 bytes
	TypeRaw          TypeCode = 23  // RAW
	TypeLongRaw      TypeCode = 24  // LONG RAW
	TypeFixedChar    TypeCode = 96  // CHAR / NCHAR
	TypeBinaryFloat  TypeCode = 100 // BINARY_FLOAT
	TypeBinaryDouble TypeCode = 101 // BINARY_DOUBLE
	TypeRowID        TypeCode = 104 // ROWID descriptor
	TypeClob         TypeCode = 112 // CLOB locator
	TypeBlob         TypeCode = 113 // BLOB locator
	TypeCursor       TypeCode = 116 // REF CURSOR
	TypeTimestamp    TypeCode = 187 // TIMESTAMP
	TypeTimestampTZ  TypeCode = 188 // TIMESTAMP WITH TIME ZONE
	TypeIntervalYM   TypeCode = 189 // INTERVAL YEAR TO MONTH
	TypeIntervalDS   TypeCode = 190 // INTERVAL DAY TO SECOND
	TypeTimestampLTZ TypeCode = 232 // TIMESTAMP WITH LOCAL TIME ZONE
	TypeBoolean      TypeCode = 252 // PL/SQL BOOLEAN
)

var typeNames = map[TypeCode]string{
	TypeChar:         "VARCHAR2",
	TypeNumber:       "NUMBER",
	TypeInt:          "INTEGER",
	TypeFloat:        "FLOAT",
	TypeString:       "STRING",
	TypeLong:         "LONG",
	TypeRowIDChar:    "ROWID",
	TypeDate:         "DATE",
	TypeRaw:          "RAW",
	TypeLongRaw:      "LONG RAW",
	TypeFixedChar:    "CHAR",
	TypeBinaryFloat:  "BINARY_FLOAT",
	TypeBinaryDouble: "BINARY_DOUBLE",
	TypeRowID:        "ROWID",
	TypeClob:         "CLOB",
	TypeBlob:         "BLOB",
	TypeCursor:       "REF CURSOR",
	TypeTimestamp:    "TIMESTAMP",
	TypeTimestampTZ:  "TIMESTAMP WITH TIME ZONE",
	TypeIntervalYM:   "INTERVAL YEAR TO MONTH",
	TypeIntervalDS:   "INTERVAL DAY TO SECOND",
	TypeTimestampLTZ: "TIMESTAMP WITH LOCAL TIME ZONE",
	TypeBoolean:      "BOOLEAN",
}

func (t TypeCode) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("TYPE(%d)", uint16(t))
}

// IsText reports whether values of t are carried as character data.
func (t TypeCode) IsText() bool {
	switch t {
	case TypeChar, TypeString, TypeLong, TypeFixedChar, TypeRowIDChar:
		return true
	}
	return false
}

// IsDateTime reports whether t is DATE or one of the TIMESTAMP types.
func (t TypeCode) IsDateTime() bool {
	switch t {
	case TypeDate, TypeTimestamp, TypeTimestampTZ, TypeTimestampLTZ:
		return true
	}
	return false
}

// IsInterval reports whether t is an INTERVAL type.
func (t TypeCode) IsInterval() bool {
	return t == TypeIntervalYM || t == TypeIntervalDS
}

// StmtType is the statement classification reported after prepare.
type StmtType uint16

const (
	StmtUnknown StmtType = 0
	StmtSelect  StmtType = 1
	StmtUpdate  StmtType = 2
	StmtDelete  StmtType = 3
	StmtInsert  StmtType = 4
	StmtCreate  StmtType = 5
	StmtDrop    StmtType = 6
	StmtAlter   StmtType = 7
	StmtBegin   StmtType = 8
	StmtDeclare StmtType = 9
	StmtCall    StmtType = 10
	StmtMerge   StmtType = 16
)

func (s StmtType) String() string {
	switch s {
	case StmtSelect:
		return "SELECT"
	case StmtUpdate:
		return "UPDATE"
	case StmtDelete:
		return "DELETE"
	case StmtInsert:
		return "INSERT"
	case StmtCreate:
		return "CREATE"
	case StmtDrop:
		return "DROP"
	case StmtAlter:
		return "ALTER"
	case StmtBegin:
		return "BEGIN"
	case StmtDeclare:
		return "DECLARE"
	case StmtCall:
		return "CALL"
	case StmtMerge:
		return "MERGE"
	}
	return "UNKNOWN"
}

// IsPLSQL reports whether the statement is an anonymous block or call.
func (s StmtType) IsPLSQL() bool {
	return s == StmtBegin || s == StmtDeclare || s == StmtCall
}

// IsDML reports whether the statement modifies rows.
func (s StmtType) IsDML() bool {
	switch s {
	case StmtInsert, StmtUpdate, StmtDelete, StmtMerge:
		return true
	}
	return false
}

// BindInfo describes one placeholder occurrence in statement text.
type BindInfo struct {
	// Name without the leading colon, upper-cased unless quoted.
	Name string
	// Duplicate is set when this occurrence shares the slot of an earlier
	// occurrence with the same name. Never set for PL/SQL blocks.
	Duplicate bool
}

// Column describes one projected column of a query.
type Column struct {
	Name      string
	Type      TypeCode
	Size      int
	Precision int
	Scale     int
	Nullable  bool
}

// NumberOp selects a binary NUMBER operation.
type NumberOp uint8

const (
	NumberAdd NumberOp = iota + 1
	NumberSub
	NumberMul
	NumberDiv
	NumberMod
	NumberPow
)

// NumberFunc selects a unary NUMBER function.
type NumberFunc uint8

const (
	NumberNeg NumberFunc = iota + 1
	NumberAbs
	NumberSqrt
	NumberLn
	NumberExp
	NumberLog10
	NumberSin
	NumberCos
	NumberTan
	NumberAtan
	NumberFloor
	NumberCeil
)
