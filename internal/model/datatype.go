package model

import (
	"regexp"
	"strconv"
	"strings"
)

// DataType is one of the canonical column types the editor supports.
type DataType string

const (
	Varchar255 DataType = "VARCHAR(255)"
	Varchar100 DataType = "VARCHAR(100)"
	Varchar50  DataType = "VARCHAR(50)"
	Text       DataType = "TEXT"
	Integer    DataType = "INTEGER"
	BigInt     DataType = "BIGINT"
	Decimal    DataType = "DECIMAL(10,2)"
	Float      DataType = "FLOAT"
	Double     DataType = "DOUBLE"
	Boolean    DataType = "BOOLEAN"
	Date       DataType = "DATE"
	DateTime   DataType = "DATETIME"
	Timestamp  DataType = "TIMESTAMP"
	Time       DataType = "TIME"
	Char10     DataType = "CHAR(10)"
	JSON       DataType = "JSON"
	Blob       DataType = "BLOB"
)

var dataTypes = []DataType{
	Varchar255, Varchar100, Varchar50, Text, Integer, BigInt, Decimal, Float,
	Double, Boolean, Date, DateTime, Timestamp, Time, Char10, JSON, Blob,
}

// DataTypes returns the canonical vocabulary in display order.
func DataTypes() []DataType {
	out := make([]DataType, len(dataTypes))
	copy(out, dataTypes)
	return out
}

// Valid reports whether d is part of the canonical vocabulary.
func (d DataType) Valid() bool {
	for _, t := range dataTypes {
		if t == d {
			return true
		}
	}
	return false
}

var varcharLength = regexp.MustCompile(`varchar\s*\(\s*(\d+)`)

// NormalizeDataType maps an arbitrary SQL type string onto the canonical
// vocabulary. The rules are substring checks evaluated in a fixed order, so
// e.g. "bigint" hits the integer family before anything else. Unknown types
// become VARCHAR(255).
func NormalizeDataType(raw string) DataType {
	t := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case strings.Contains(t, "int") || strings.Contains(t, "identity") || strings.Contains(t, "serial"):
		if strings.Contains(t, "big") {
			return BigInt
		}
		return Integer
	case strings.Contains(t, "varchar"):
		m := varcharLength.FindStringSubmatch(t)
		if m == nil {
			return Varchar255
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Varchar255
		}
		switch {
		case n <= 50:
			return Varchar50
		case n <= 100:
			return Varchar100
		}
		return Varchar255
	case strings.Contains(t, "char"):
		return Char10
	case strings.Contains(t, "text"):
		return Text
	case strings.Contains(t, "date"):
		if strings.Contains(t, "time") {
			return DateTime
		}
		return Date
	case strings.Contains(t, "time"):
		if strings.Contains(t, "stamp") {
			return Timestamp
		}
		return Time
	case strings.Contains(t, "decimal") || strings.Contains(t, "numeric"):
		return Decimal
	case strings.Contains(t, "float") || strings.Contains(t, "real"):
		return Float
	case strings.Contains(t, "double"):
		return Double
	case strings.Contains(t, "bool"):
		return Boolean
	case strings.Contains(t, "json"):
		return JSON
	case strings.Contains(t, "blob") || strings.Contains(t, "bytea") || strings.Contains(t, "binary"):
		return Blob
	}
	return Varchar255
}
