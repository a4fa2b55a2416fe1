package result

import "strings"

// Type is the declared type code of a column. It decides how raw driver
// values are normalized into a Value.
type Type int

const (
	// TypeUnknown infers the type from the driver value.
	TypeUnknown Type = iota
	TypeNull
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeBytes
	TypeTime
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	case TypeTime:
		return "time"
	default:
		return "unknown"
	}
}

var databaseTypes = map[string]Type{
	"NULL":             TypeNull,
	"BOOL":             TypeBool,
	"BOOLEAN":          TypeBool,
	"BIT":              TypeBool,
	"INT":              TypeInt,
	"INTEGER":          TypeInt,
	"TINYINT":          TypeInt,
	"SMALLINT":         TypeInt,
	"MEDIUMINT":        TypeInt,
	"BIGINT":           TypeInt,
	"INT2":             TypeInt,
	"INT4":             TypeInt,
	"INT8":             TypeInt,
	"SERIAL":           TypeInt,
	"BIGSERIAL":        TypeInt,
	"REAL":             TypeFloat,
	"FLOAT":            TypeFloat,
	"FLOAT4":           TypeFloat,
	"FLOAT8":           TypeFloat,
	"DOUBLE":           TypeFloat,
	"DOUBLE PRECISION": TypeFloat,
	"DECIMAL":          TypeFloat,
	"NUMERIC":          TypeFloat,
	"CHAR":             TypeString,
	"VARCHAR":          TypeString,
	"NCHAR":            TypeString,
	"NVARCHAR":         TypeString,
	"TEXT":             TypeString,
	"CLOB":             TypeString,
	"UUID":             TypeString,
	"JSON":             TypeString,
	"JSONB":            TypeString,
	"BLOB":             TypeBytes,
	"BYTEA":            TypeBytes,
	"BINARY":           TypeBytes,
	"VARBINARY":        TypeBytes,
	"DATE":             TypeTime,
	"TIME":             TypeTime,
	"DATETIME":         TypeTime,
	"TIMESTAMP":        TypeTime,
	"TIMESTAMPTZ":      TypeTime,
}

// TypeFromDatabase maps a driver's database type name, such as "VARCHAR(32)"
// or "BIGINT", to a Type. Names that are not recognized fall back to
// SQLite-style affinity rules, and an empty name is TypeUnknown.
func TypeFromDatabase(name string) Type {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimPrefix(name, "UNSIGNED ")
	if name == "" {
		return TypeUnknown
	}
	if typ, ok := databaseTypes[name]; ok {
		return typ
	}

	switch {
	case strings.Contains(name, "INT"):
		return TypeInt
	case strings.Contains(name, "CHAR"), strings.Contains(name, "CLOB"), strings.Contains(name, "TEXT"):
		return TypeString
	case strings.Contains(name, "BLOB"):
		return TypeBytes
	case strings.Contains(name, "REAL"), strings.Contains(name, "FLOA"), strings.Contains(name, "DOUB"):
		return TypeFloat
	case strings.Contains(name, "TIME"), strings.Contains(name, "DATE"):
		return TypeTime
	case strings.Contains(name, "BOOL"):
		return TypeBool
	}
	return TypeUnknown
}

// Column describes one column of a query result.
type Column struct {
	// Name is the column label reported by the driver. Lookups are case-sensitive.
	Name string

	// Type is the declared type code.
	Type Type

	// DatabaseType is the driver's type name, kept for diagnostics.
	DatabaseType string
}
