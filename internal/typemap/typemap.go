// Package typemap maps source-schema type names to the canonical target type
// vocabulary understood by the nocsharp generator.
package typemap

import "strings"

// Canonical target types.
const (
	String   = "string"
	Int      = "int"
	Long     = "long"
	Bool     = "bool"
	Decimal  = "decimal"
	Float    = "float"
	Double   = "double"
	DateTime = "DateTime"
	TimeSpan = "TimeSpan"
	Guid     = "Guid"
)

// dbmlTypes is keyed by lower-cased DBML type names with size/precision
// suffixes already stripped.
var dbmlTypes = map[string]string{
	"string":           String,
	"varchar":          String,
	"nvarchar":         String,
	"char":             String,
	"nchar":            String,
	"text":             String,
	"ntext":            String,
	"character":        String,
	"json":             String,
	"jsonb":            String,
	"int":              Int,
	"integer":          Int,
	"int4":             Int,
	"smallint":         Int,
	"tinyint":          Int,
	"serial":           Int,
	"long":             Long,
	"bigint":           Long,
	"int8":             Long,
	"bigserial":        Long,
	"bool":             Bool,
	"boolean":          Bool,
	"bit":              Bool,
	"decimal":          Decimal,
	"numeric":          Decimal,
	"money":            Decimal,
	"float":            Float,
	"real":             Float,
	"float4":           Float,
	"double":           Double,
	"float8":           Double,
	"datetime":         DateTime,
	"datetime2":        DateTime,
	"timestamp":        DateTime,
	"timestamptz":      DateTime,
	"date":             DateTime,
	"time":             TimeSpan,
	"timespan":         TimeSpan,
	"interval":         TimeSpan,
	"guid":             Guid,
	"uuid":             Guid,
	"uniqueidentifier": Guid,
}

// sourceTypes holds the exact-case canonical names the source parser accepts.
var sourceTypes = map[string]string{
	"string":   String,
	"int":      Int,
	"Guid":     Guid,
	"DateTime": DateTime,
	"decimal":  Decimal,
	"bool":     Bool,
	"double":   Double,
	"float":    Float,
	"long":     Long,
}

// FromDBML maps a DBML type token. The token is lower-cased before lookup and
// unknown types default to "string".
func FromDBML(token string) string {
	if t, ok := dbmlTypes[strings.ToLower(strings.TrimSpace(token))]; ok {
		return t
	}
	return String
}

// FromSource maps a C# type token by exact case. Unknown tokens pass through
// unchanged so navigation properties keep the related entity name.
func FromSource(token string) string {
	if t, ok := sourceTypes[token]; ok {
		return t
	}
	return token
}

// IsCanonical reports whether t is one of the canonical target types.
func IsCanonical(t string) bool {
	switch t {
	case String, Int, Long, Bool, Decimal, Float, Double, DateTime, TimeSpan, Guid:
		return true
	}
	return false
}
