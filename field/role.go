package field

// Role tags a field with its protocol meaning. Layout resolution and storage
// operate uniformly over the field geometry; the role is consulted only for
// role-specific behavior such as checksum computation or operation-code
// lookup.
type Role uint8

const (
	RoleBasic      Role = 0x1 // RoleBasic is a plain multi-word field.
	RoleSingle     Role = 0x2 // RoleSingle is a plain single-word field.
	RoleStatic     Role = 0x3 // RoleStatic is a single word fixed to its default (e.g. preamble).
	RoleAddress    Role = 0x4 // RoleAddress is a register or memory address.
	RoleData       Role = 0x5 // RoleData is the message payload.
	RoleDataLength Role = 0x6 // RoleDataLength is the byte count of the data field.
	RoleID         Role = 0x7 // RoleID is a message sequence identifier.
	RoleOperation  Role = 0x8 // RoleOperation is an operation code (read/write).
	RoleResponse   Role = 0x9 // RoleResponse is a device response status code.
	RoleCRC        Role = 0xA // RoleCRC is a checksum over the other fields.
)

// IsSingleWord reports whether the role requires exactly one word of content.
func (r Role) IsSingleWord() bool {
	switch r {
	case RoleSingle, RoleStatic, RoleAddress, RoleDataLength, RoleID,
		RoleOperation, RoleResponse, RoleCRC:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleBasic:
		return "basic"
	case RoleSingle:
		return "single"
	case RoleStatic:
		return "static"
	case RoleAddress:
		return "address"
	case RoleData:
		return "data"
	case RoleDataLength:
		return "data_length"
	case RoleID:
		return "id"
	case RoleOperation:
		return "operation"
	case RoleResponse:
		return "response"
	case RoleCRC:
		return "crc"
	default:
		return "unknown"
	}
}

// Desc is a symbolic description of an operation or response word value,
// resolved through the field's value lookup table.
type Desc uint8

const (
	DescUndefined Desc = 0x0 // DescUndefined is a value absent from the lookup table.
	DescRead      Desc = 0x1 // DescRead describes a read operation.
	DescWrite     Desc = 0x2 // DescWrite describes a write operation.
	DescOK        Desc = 0x3 // DescOK describes a successful response.
	DescWait      Desc = 0x4 // DescWait describes a busy/retry-later response.
	DescError     Desc = 0x5 // DescError describes a failed response.
)

func (d Desc) String() string {
	switch d {
	case DescRead:
		return "read"
	case DescWrite:
		return "write"
	case DescOK:
		return "ok"
	case DescWait:
		return "wait"
	case DescError:
		return "error"
	default:
		return "undefined"
	}
}
